// Package verification owns the artist request state machine and the
// compensating profile and handle writes each transition requires.
package verification

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/atelierhq/curator-api/internal/handles"
	"github.com/atelierhq/curator-api/internal/lifecycle"
	"github.com/atelierhq/curator-api/internal/models"
	"github.com/atelierhq/curator-api/internal/repository"
	"github.com/atelierhq/curator-api/internal/store"
)

type Lifecycle struct {
	requests repository.RequestRepository
	profiles repository.ProfileRepository
	registry *handles.Registry
	now      func() time.Time
}

func NewLifecycle(requests repository.RequestRepository, profiles repository.ProfileRepository, registry *handles.Registry) *Lifecycle {
	return &Lifecycle{
		requests: requests,
		profiles: profiles,
		registry: registry,
		now:      time.Now,
	}
}

// Approve moves a pending request to approved and grants the professional
// and verified flags on the owning profile, in that order.
func (l *Lifecycle) Approve(ctx context.Context, requestID, reviewerID, notes string) (*lifecycle.Saga, error) {
	request, err := l.snapshot(ctx, requestID, models.RequestStatusApproved)
	if err != nil {
		return nil, err
	}
	// suspended -> approved is the reinstate edge, not an approval.
	if request.Status != models.RequestStatusPending {
		return nil, errors.Wrapf(lifecycle.ErrInvalidTransition, "approve requires pending, request is %s", request.Status)
	}

	return &lifecycle.Saga{
		Operation: "approve",
		Steps: []lifecycle.Step{
			{
				Name: "request.approve",
				Apply: func(ctx context.Context) error {
					l.markReviewed(&request, models.RequestStatusApproved, reviewerID)
					request.Notes = notes
					return l.requests.PutRequest(ctx, request)
				},
			},
			{
				Name: "profile.flags",
				Apply: func(ctx context.Context) error {
					return l.updateProfile(ctx, request.UserID, func(p *models.UserProfile) {
						p.IsProfessional = true
						p.IsVerified = true
					})
				},
			},
		},
	}, nil
}

// Reject moves a pending request to rejected. The reason is mandatory and no
// profile write happens; rejected applicants never received profile flags.
func (l *Lifecycle) Reject(ctx context.Context, requestID, reviewerID, reason, notes string) (*lifecycle.Saga, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, errors.Wrap(lifecycle.ErrValidation, "rejection reason is required")
	}

	request, err := l.snapshot(ctx, requestID, models.RequestStatusRejected)
	if err != nil {
		return nil, err
	}

	return &lifecycle.Saga{
		Operation: "reject",
		Steps: []lifecycle.Step{
			{
				Name: "request.reject",
				Apply: func(ctx context.Context) error {
					l.markReviewed(&request, models.RequestStatusRejected, reviewerID)
					request.RejectionReason = reason
					request.Notes = notes
					return l.requests.PutRequest(ctx, request)
				},
			},
		},
	}, nil
}

// Suspend deactivates the profile first, then records the suspension on the
// request, so a crash mid-operation never reports "suspended" while the
// profile is still live.
func (l *Lifecycle) Suspend(ctx context.Context, requestID, reviewerID string) (*lifecycle.Saga, error) {
	request, err := l.snapshot(ctx, requestID, models.RequestStatusSuspended)
	if err != nil {
		return nil, err
	}

	return &lifecycle.Saga{
		Operation: "suspend",
		Steps: []lifecycle.Step{
			{
				Name: "profile.deactivate",
				Apply: func(ctx context.Context) error {
					suspendedAt := l.now().UTC()
					return l.updateProfile(ctx, request.UserID, func(p *models.UserProfile) {
						p.IsActive = false
						p.IsProfessional = false
						p.SuspendedAt = &suspendedAt
						p.SuspendedBy = reviewerID
					})
				},
			},
			{
				Name: "request.suspend",
				Apply: func(ctx context.Context) error {
					l.markReviewed(&request, models.RequestStatusSuspended, reviewerID)
					return l.requests.PutRequest(ctx, request)
				},
			},
		},
	}, nil
}

// Reinstate reverses a suspension with the same profile-before-request
// ordering as Suspend.
func (l *Lifecycle) Reinstate(ctx context.Context, requestID, reviewerID string) (*lifecycle.Saga, error) {
	request, err := l.snapshot(ctx, requestID, models.RequestStatusApproved)
	if err != nil {
		return nil, err
	}
	if request.Status != models.RequestStatusSuspended {
		return nil, errors.Wrapf(lifecycle.ErrInvalidTransition, "reinstate requires suspended, request is %s", request.Status)
	}

	return &lifecycle.Saga{
		Operation: "reinstate",
		Steps: []lifecycle.Step{
			{
				Name: "profile.reactivate",
				Apply: func(ctx context.Context) error {
					return l.updateProfile(ctx, request.UserID, func(p *models.UserProfile) {
						p.IsActive = true
						p.IsProfessional = true
						p.SuspendedAt = nil
						p.SuspendedBy = ""
					})
				},
			},
			{
				Name: "request.reinstate",
				Apply: func(ctx context.Context) error {
					l.markReviewed(&request, models.RequestStatusApproved, reviewerID)
					return l.requests.PutRequest(ctx, request)
				},
			},
		},
	}, nil
}

// Remove marks the request removed, deletes the profile, and releases the
// handle, in strict order. Intent is made durable before the destructive
// steps; a dangling handle after a failed last step is a repairable
// inconsistency, reported as partial rather than rolled back.
func (l *Lifecycle) Remove(ctx context.Context, requestID, reviewerID string) (*lifecycle.Saga, error) {
	request, err := l.snapshot(ctx, requestID, models.RequestStatusRemoved)
	if err != nil {
		return nil, err
	}

	// The username comes from the profile snapshot; the request's applicant
	// snapshot is the fallback when the profile is already gone.
	username := request.Applicant.Username
	if profile, err := l.profiles.GetProfile(ctx, request.UserID); err == nil {
		username = profile.Username
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	steps := []lifecycle.Step{
		{
			Name: "request.remove",
			Apply: func(ctx context.Context) error {
				l.markReviewed(&request, models.RequestStatusRemoved, reviewerID)
				return l.requests.PutRequest(ctx, request)
			},
		},
		{
			Name: "profile.delete",
			Apply: func(ctx context.Context) error {
				return l.profiles.DeleteProfile(ctx, request.UserID)
			},
		},
	}
	if username != "" {
		steps = append(steps, lifecycle.Step{
			Name: "handle.release",
			Apply: func(ctx context.Context) error {
				return l.registry.Release(ctx, username)
			},
		})
	}

	return &lifecycle.Saga{Operation: "remove", Steps: steps}, nil
}

// snapshot reads the request and checks that the transition graph allows
// moving to the target status. All precondition failures happen here, before
// any write.
func (l *Lifecycle) snapshot(ctx context.Context, requestID string, target models.RequestStatus) (models.ArtistRequest, error) {
	request, err := l.requests.GetRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.ArtistRequest{}, errors.Wrapf(lifecycle.ErrNotFound, "request %s", requestID)
		}
		return models.ArtistRequest{}, err
	}
	if !models.CanTransition(request.Status, target) {
		return models.ArtistRequest{}, errors.Wrapf(lifecycle.ErrInvalidTransition, "%s -> %s", request.Status, target)
	}
	return request, nil
}

func (l *Lifecycle) markReviewed(request *models.ArtistRequest, status models.RequestStatus, reviewerID string) {
	reviewedAt := l.now().UTC()
	request.Status = status
	request.ReviewedAt = &reviewedAt
	request.ReviewedBy = reviewerID
}

func (l *Lifecycle) updateProfile(ctx context.Context, userID string, mutate func(*models.UserProfile)) error {
	profile, err := l.profiles.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	mutate(&profile)
	profile.UpdatedAt = l.now().UTC()
	return l.profiles.PutProfile(ctx, profile)
}
