package verification

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"domainmarket/marketplace-backend/internal/listings"
	"domainmarket/marketplace-backend/internal/notifications"
	"domainmarket/marketplace-backend/pkg/errs"
	"domainmarket/marketplace-backend/pkg/workflows"
)

// ListingStore is the slice of the listings service this orchestrator needs.
type ListingStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*listings.Listing, error)
	UpdateVerificationFlags(ctx context.Context, id uuid.UUID, verificationStatus listings.VerificationStatus, isVerified bool, listingStatus listings.ListingStatus) error
}

// Dispatcher sends business events to the notification pipeline.
type Dispatcher interface {
	Dispatch(ctx context.Context, event notifications.Event) error
}

// Service orchestrates the verification state machine: start, approve,
// reject, on-demand checks and email confirmation.
type Service struct {
	repo       Repository
	listings   ListingStore
	checker    *Checker
	dispatcher Dispatcher
	sm         *workflows.StateMachine
	logger     *zap.Logger
	publicURL  string
}

// NewService creates the verification orchestrator.
func NewService(repo Repository, listingStore ListingStore, checker *Checker, dispatcher Dispatcher, logger *zap.Logger, publicURL string) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:       repo,
		listings:   listingStore,
		checker:    checker,
		dispatcher: dispatcher,
		sm:         workflows.NewVerificationStateMachine(),
		logger:     logger,
		publicURL:  publicURL,
	}
}

// StartRequest carries the parameters for starting a verification.
type StartRequest struct {
	Method Method `json:"method" binding:"required"`

	// RecipientEmail applies to the email method only. Defaults to
	// admin@<domain>.
	RecipientEmail string `json:"recipient_email"`
}

// Start creates a pending verification request for a listing. Only the
// listing owner may start one. A prior pending request for the same listing
// is cancelled in the same transaction.
func (s *Service) Start(ctx context.Context, listingID, actorID uuid.UUID, startReq StartRequest) (*Request, error) {
	if !startReq.Method.Valid() {
		return nil, fmt.Errorf("unknown verification method %q", startReq.Method)
	}

	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != actorID {
		return nil, fmt.Errorf("caller %s does not own listing %s: %w", actorID, listingID, errs.ErrUnauthorized)
	}

	token := newToken()
	payload, err := buildPayload(startReq, listing.DomainName, token)
	if err != nil {
		return nil, err
	}
	data, err := payload.Encode(startReq.Method)
	if err != nil {
		return nil, err
	}

	req := &Request{
		ID:       uuid.New(),
		DomainID: listingID,
		Method:   startReq.Method,
		Data:     data,
		Status:   StatusPending,
	}
	if err := s.repo.CreateSuperseding(ctx, req); err != nil {
		return nil, err
	}

	if err := s.listings.UpdateVerificationFlags(ctx, listingID, listings.VerificationPending, false, listings.StatusPendingVerification); err != nil {
		return nil, fmt.Errorf("request created but listing update failed: %w (%w)", err, errs.ErrPartialMutation)
	}

	s.appendHistory(ctx, req, ActionStarted, &actorID, map[string]any{"method": startReq.Method})

	if startReq.Method == MethodEmail {
		confirmURL := fmt.Sprintf("%s/api/v1/verifications/confirm/%s", s.publicURL, token)
		event := notifications.Event{
			Type:           "verification_email_sent",
			UserID:         listing.OwnerID,
			RecipientEmail: payload.Email.RecipientEmail,
			RelatedID:      &req.ID,
			Data: map[string]any{
				"domain_name": listing.DomainName,
				"confirm_url": confirmURL,
			},
		}
		if err := s.dispatcher.Dispatch(ctx, event); err != nil {
			s.logger.Warn("verification email dispatch failed",
				zap.String("verification_id", req.ID.String()),
				zap.Error(err))
		}
	}

	return req, nil
}

// Approve transitions a pending request to verified and flips the listing's
// trust flags. Approving an already-verified request is a no-op success and
// does not produce a duplicate notification.
func (s *Service) Approve(ctx context.Context, verificationID, adminID uuid.UUID) error {
	req, err := s.repo.GetByID(ctx, verificationID)
	if err != nil {
		return err
	}
	if req.Status == StatusVerified {
		return nil
	}
	if s.sm.IsTerminal(req.Status) {
		return fmt.Errorf("verification %s is %s: %w", verificationID, req.Status, errs.ErrTerminalState)
	}

	listing, err := s.listings.GetByID(ctx, req.DomainID)
	if err != nil {
		return err
	}

	changed, err := s.repo.TransitionFromPending(ctx, verificationID, StatusVerified)
	if err != nil {
		return err
	}
	if !changed {
		// Lost a race: someone else just moved the status. Re-read to
		// decide between idempotent success and a terminal conflict.
		current, err := s.repo.GetByID(ctx, verificationID)
		if err != nil {
			return err
		}
		if current.Status == StatusVerified {
			return nil
		}
		return fmt.Errorf("verification %s is %s: %w", verificationID, current.Status, errs.ErrTerminalState)
	}

	if err := s.listings.UpdateVerificationFlags(ctx, req.DomainID, listings.VerificationVerified, true, listings.StatusAvailable); err != nil {
		return fmt.Errorf("status updated but listing update failed: %w (%w)", err, errs.ErrPartialMutation)
	}

	if err := s.repo.AppendHistory(ctx, &History{
		VerificationID: req.ID,
		DomainID:       req.DomainID,
		Action:         ActionApproved,
		ActorID:        &adminID,
	}); err != nil {
		return fmt.Errorf("listing updated but history append failed: %w (%w)", err, errs.ErrPartialMutation)
	}

	event := notifications.Event{
		Type:           "verification_approved",
		UserID:         listing.OwnerID,
		RecipientEmail: listing.OwnerEmail,
		RelatedID:      &req.ID,
		Data:           map[string]any{"domain_name": listing.DomainName},
	}
	if err := s.dispatcher.Dispatch(ctx, event); err != nil {
		s.logger.Warn("approval notification dispatch failed",
			zap.String("verification_id", req.ID.String()),
			zap.Error(err))
	}
	return nil
}

// Reject transitions a pending request to rejected. Idempotent like Approve.
func (s *Service) Reject(ctx context.Context, verificationID, adminID uuid.UUID, reason string) error {
	req, err := s.repo.GetByID(ctx, verificationID)
	if err != nil {
		return err
	}
	if req.Status == StatusRejected {
		return nil
	}
	if s.sm.IsTerminal(req.Status) {
		return fmt.Errorf("verification %s is %s: %w", verificationID, req.Status, errs.ErrTerminalState)
	}

	listing, err := s.listings.GetByID(ctx, req.DomainID)
	if err != nil {
		return err
	}

	changed, err := s.repo.TransitionFromPending(ctx, verificationID, StatusRejected)
	if err != nil {
		return err
	}
	if !changed {
		current, err := s.repo.GetByID(ctx, verificationID)
		if err != nil {
			return err
		}
		if current.Status == StatusRejected {
			return nil
		}
		return fmt.Errorf("verification %s is %s: %w", verificationID, current.Status, errs.ErrTerminalState)
	}

	// Rejection clears the trust flag but leaves the marketplace status
	// alone.
	if err := s.listings.UpdateVerificationFlags(ctx, req.DomainID, listings.VerificationRejected, false, ""); err != nil {
		return fmt.Errorf("status updated but listing update failed: %w (%w)", err, errs.ErrPartialMutation)
	}

	if err := s.repo.AppendHistory(ctx, &History{
		VerificationID: req.ID,
		DomainID:       req.DomainID,
		Action:         ActionRejected,
		ActorID:        &adminID,
		Detail:         mustJSON(map[string]any{"reason": reason}),
	}); err != nil {
		return fmt.Errorf("listing updated but history append failed: %w (%w)", err, errs.ErrPartialMutation)
	}

	event := notifications.Event{
		Type:           "verification_rejected",
		UserID:         listing.OwnerID,
		RecipientEmail: listing.OwnerEmail,
		RelatedID:      &req.ID,
		Data: map[string]any{
			"domain_name": listing.DomainName,
			"reason":      reason,
		},
	}
	if err := s.dispatcher.Dispatch(ctx, event); err != nil {
		s.logger.Warn("rejection notification dispatch failed",
			zap.String("verification_id", req.ID.String()),
			zap.Error(err))
	}
	return nil
}

// CheckNow runs the advisory checker for a request and records the outcome
// in the history. It never changes the request or listing status.
func (s *Service) CheckNow(ctx context.Context, verificationID uuid.UUID) (*CheckResult, error) {
	req, err := s.repo.GetByID(ctx, verificationID)
	if err != nil {
		return nil, err
	}
	payload, err := DecodePayload(req.Method, req.Data)
	if err != nil {
		return nil, err
	}
	listing, err := s.listings.GetByID(ctx, req.DomainID)
	if err != nil {
		return nil, err
	}

	result := s.checker.Check(ctx, req.Method, listing.DomainName, payload)
	s.appendHistory(ctx, req, ActionCheckPerformed, nil, map[string]any{
		"verified": result.Verified,
		"message":  result.Message,
	})
	return &result, nil
}

// ConfirmEmail marks an email-method request confirmed. Idempotent: hitting
// an already-confirmed link succeeds again.
func (s *Service) ConfirmEmail(ctx context.Context, token string) error {
	req, err := s.repo.GetPendingByEmailToken(ctx, token)
	if err != nil {
		return err
	}
	payload, err := DecodePayload(req.Method, req.Data)
	if err != nil {
		return err
	}
	if payload.Email.Confirmed {
		return nil
	}

	now := time.Now()
	payload.Email.Confirmed = true
	payload.Email.ConfirmedAt = &now
	data, err := payload.Encode(MethodEmail)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateData(ctx, req.ID, data); err != nil {
		return err
	}
	s.appendHistory(ctx, req, ActionEmailConfirmed, nil, nil)
	return nil
}

// Get returns a verification request by id.
func (s *Service) Get(ctx context.Context, verificationID uuid.UUID) (*Request, error) {
	return s.repo.GetByID(ctx, verificationID)
}

func (s *Service) appendHistory(ctx context.Context, req *Request, action string, actorID *uuid.UUID, detail map[string]any) {
	record := &History{
		VerificationID: req.ID,
		DomainID:       req.DomainID,
		Action:         action,
		ActorID:        actorID,
	}
	if detail != nil {
		record.Detail = mustJSON(detail)
	}
	if err := s.repo.AppendHistory(ctx, record); err != nil {
		s.logger.Warn("failed to append verification history",
			zap.String("verification_id", req.ID.String()),
			zap.String("action", action),
			zap.Error(err))
	}
}

func buildPayload(startReq StartRequest, domainName, token string) (Payload, error) {
	switch startReq.Method {
	case MethodDNS:
		return Payload{DNS: &DNSPayload{
			RecordName:  "_domainverify." + domainName,
			RecordValue: token,
		}}, nil
	case MethodFile:
		return Payload{File: &FilePayload{
			FileLocation: "https://" + domainName + "/domainverify.txt",
			FileContent:  token,
		}}, nil
	case MethodHTML:
		return Payload{HTML: &HTMLPayload{
			TagName:    "domain-verify",
			TagContent: token,
		}}, nil
	case MethodEmail:
		recipient := startReq.RecipientEmail
		if recipient == "" {
			recipient = "admin@" + domainName
		}
		return Payload{Email: &EmailPayload{
			RecipientEmail: recipient,
			Token:          token,
		}}, nil
	default:
		return Payload{}, fmt.Errorf("unknown verification method %q", startReq.Method)
	}
}

func newToken() string {
	buf := make([]byte, 16)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}

func mustJSON(v map[string]any) datatypes.JSON {
	raw, _ := json.Marshal(v)
	return datatypes.JSON(raw)
}
