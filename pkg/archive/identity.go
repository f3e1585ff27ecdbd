package archive

import "context"

// Identity is the acting principal, resolved once per request from the
// identity provider. The admin capability is an attribute of the identity,
// not of any document.
type Identity struct {
	ID      string
	IsAdmin bool
}

// Anonymous is the zero identity used for unauthenticated requests.
var Anonymous = Identity{}

// IsAnonymous reports whether no identity is present.
func (id Identity) IsAnonymous() bool {
	return id.ID == ""
}

// CanMutate reports whether this identity may mutate the given document:
// the owner may, and an administrator may regardless of ownership.
func (id Identity) CanMutate(doc *Document) bool {
	if id.IsAnonymous() {
		return false
	}
	return id.IsAdmin || id.ID == doc.OwnerID
}

// ActorID returns the identity's id, or the anonymous marker for the
// access log.
func (id Identity) ActorID() string {
	if id.IsAnonymous() {
		return AnonymousActor
	}
	return id.ID
}

// requireIdentity is the loud half of the authorization contract: no
// identity at all always aborts the request.
func requireIdentity(actor Identity) error {
	if actor.IsAnonymous() {
		return ErrUnauthenticated
	}
	return nil
}

// mutationScope returns the owner predicate for a scoped mutation: nil
// (unscoped) for administrators, the actor's id otherwise. The repository
// applies the predicate in the same statement as the mutation, so there is
// no check-then-act window.
func mutationScope(actor Identity) *string {
	if actor.IsAdmin {
		return nil
	}
	owner := actor.ID
	return &owner
}

type identityContextKey struct{}

// WithIdentity returns a context carrying the given identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext returns the identity stored in ctx, or Anonymous.
func IdentityFromContext(ctx context.Context) Identity {
	if id, ok := ctx.Value(identityContextKey{}).(Identity); ok {
		return id
	}
	return Anonymous
}
