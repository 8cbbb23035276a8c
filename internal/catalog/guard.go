package catalog

// Principal is the authenticated caller of a mutating operation.
type Principal struct {
	UserID int64
}

// CanMutate reports whether the session user owns the record.
func CanMutate(sessionUserID, ownerUserID int64) bool {
	return sessionUserID == ownerUserID
}

// Authorize checks authentication before ownership so the two failures stay
// distinguishable.
func Authorize(p *Principal, ownerUserID int64) error {
	if p == nil {
		return ErrNotAuthenticated
	}
	if !CanMutate(p.UserID, ownerUserID) {
		return ErrNotAuthorized
	}
	return nil
}
