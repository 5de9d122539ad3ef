package service

import "library-service-backend/internal/domain"

// Owner-or-staff policy shared by borrowing and payment operations.
// Anonymous actors are always denied; the HTTP layer distinguishes 401
// from 403, this layer only distinguishes the two errors.

func canAccessBorrowing(actor domain.Actor, b *domain.Borrowing) error {
	if !actor.IsAuthenticated {
		return domain.ErrUnauthenticated
	}
	if actor.IsStaff || actor.ID == b.UserID {
		return nil
	}
	return domain.ErrForbidden
}

func requireStaff(actor domain.Actor) error {
	if !actor.IsAuthenticated {
		return domain.ErrUnauthenticated
	}
	if !actor.IsStaff {
		return domain.ErrForbidden
	}
	return nil
}

func requireAuthenticated(actor domain.Actor) error {
	if !actor.IsAuthenticated {
		return domain.ErrUnauthenticated
	}
	return nil
}
