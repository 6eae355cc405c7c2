package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/tokenvault/backend/internal/domain"
	"github.com/tokenvault/backend/internal/queue/client"
	"github.com/tokenvault/backend/internal/queue/task"
	"github.com/tokenvault/backend/internal/repository"
	"github.com/tokenvault/backend/pkg/logger"
)

// lifecycleRetries bounds how often a lifecycle write is retried after losing
// a compare-and-swap race to a concurrent confirm or dispute.
const lifecycleRetries = 3

const defaultDisputeReason = "No reason provided"

type escrowService struct {
	escrowRepository  repository.Escrows
	messageRepository repository.Messages
	userRepository    repository.Users
}

func newEscrowService(escrowRepository repository.Escrows,
	messageRepository repository.Messages,
	userRepository repository.Users,
) *escrowService {
	return &escrowService{
		escrowRepository:  escrowRepository,
		messageRepository: messageRepository,
		userRepository:    userRepository,
	}
}

func (s *escrowService) Create(ctx context.Context, caller Caller, input CreateEscrowInput) (*domain.Escrow, error) {
	input.RecipientEmail = strings.ToLower(strings.TrimSpace(input.RecipientEmail))

	if input.TokenAddress == "" || input.TokenSymbol == "" || input.Amount == "" ||
		input.RecipientEmail == "" || input.Description == "" {
		return nil, ErrValidation
	}
	if !common.IsHexAddress(input.TokenAddress) {
		return nil, fmt.Errorf("%w: token address", ErrValidation)
	}

	escrowID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate escrow id failed: %w", err)
	}

	escrow := &domain.Escrow{
		ID:             escrowID,
		TokenAddress:   input.TokenAddress,
		TokenSymbol:    input.TokenSymbol,
		Amount:         input.Amount,
		Description:    input.Description,
		Terms:          input.Terms,
		CreatorID:      caller.ID,
		RecipientEmail: input.RecipientEmail,
		Status:         domain.EscrowPending,
	}

	if err := s.escrowRepository.Create(ctx, escrow); err != nil {
		return nil, fmt.Errorf("create escrow failed: %w", err)
	}

	s.notifyCreated(ctx, escrow, caller)

	return escrow, nil
}

// resolveParty authorizes the caller against the escrow and performs lazy
// recipient binding: an unbound invitee whose authenticated email matches
// recipient_email becomes the bound recipient before the requested action is
// evaluated. Binding is idempotent; losing the bind race to a concurrent
// request changes nothing.
func (s *escrowService) resolveParty(ctx context.Context, escrow *domain.Escrow, caller Caller) (domain.EscrowRole, error) {
	role := escrow.RoleOf(caller.ID, caller.Email)
	if role == domain.RoleNone {
		return domain.RoleNone, ErrNotParticipant
	}

	if role == domain.RoleRecipient && escrow.RecipientID == nil {
		if err := s.escrowRepository.BindRecipient(ctx, escrow.ID, caller.ID); err != nil {
			return domain.RoleNone, fmt.Errorf("bind recipient failed: %w", err)
		}
		id := caller.ID
		escrow.RecipientID = &id
	}

	return role, nil
}

func (s *escrowService) Get(ctx context.Context, escrowID uuid.UUID, caller Caller) (*domain.Escrow, error) {
	escrow, err := s.getEscrow(ctx, escrowID)
	if err != nil {
		return nil, err
	}

	if _, err := s.resolveParty(ctx, escrow, caller); err != nil {
		return nil, err
	}

	return escrow, nil
}

func (s *escrowService) ListByUser(ctx context.Context, caller Caller) ([]domain.Escrow, error) {
	return s.escrowRepository.ListByParty(ctx, caller.ID, caller.Email)
}

// Confirm records the caller's confirmation and recomputes the status
// projection. The write is a compare-and-swap against the state this call
// observed; on a lost race the escrow is re-read and the rules re-applied,
// so two near-simultaneous confirmations cannot drop one another.
func (s *escrowService) Confirm(ctx context.Context, escrowID uuid.UUID, caller Caller) (*domain.Escrow, error) {
	for attempt := 0; attempt < lifecycleRetries; attempt++ {
		escrow, err := s.getEscrow(ctx, escrowID)
		if err != nil {
			return nil, err
		}

		role, err := s.resolveParty(ctx, escrow, caller)
		if err != nil {
			return nil, err
		}

		switch escrow.Status {
		case domain.EscrowCompleted:
			return nil, ErrEscrowCompleted
		case domain.EscrowDisputed:
			return nil, ErrEscrowDisputed
		}

		prev := repository.LifecycleStateOf(escrow)

		next := *escrow
		if role == domain.RoleCreator {
			next.SellerConfirmed = true
		} else {
			next.BuyerConfirmed = true
		}

		// Completion must never be reachable without both wallets, and a
		// confirmation that would complete is rejected whole rather than
		// half-recorded.
		if next.BothConfirmed() && !next.WalletsPresent() {
			return nil, ErrMissingWallet
		}

		next.Status = next.DeriveStatus()
		if next.Status == domain.EscrowCompleted {
			now := time.Now()
			next.CompletedAt = &now
		}

		// Re-confirming sets a flag that is already set; nothing to write.
		if next.BuyerConfirmed == prev.BuyerConfirmed && next.SellerConfirmed == prev.SellerConfirmed {
			return escrow, nil
		}

		err = s.escrowRepository.UpdateLifecycle(ctx, &next, prev)
		if errors.Is(err, domain.ErrNoRowsAffected) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("update escrow lifecycle failed: %w", err)
		}

		s.notifyConfirmed(ctx, &next, role)
		if next.Status == domain.EscrowCompleted {
			s.enqueueSettlement(ctx, &next)
		}

		return &next, nil
	}

	return nil, ErrConcurrentUpdate
}

func (s *escrowService) Dispute(ctx context.Context, escrowID uuid.UUID, caller Caller, reason string) (*domain.Escrow, error) {
	if reason == "" {
		reason = defaultDisputeReason
	}

	for attempt := 0; attempt < lifecycleRetries; attempt++ {
		escrow, err := s.getEscrow(ctx, escrowID)
		if err != nil {
			return nil, err
		}

		if _, err := s.resolveParty(ctx, escrow, caller); err != nil {
			return nil, err
		}

		switch escrow.Status {
		case domain.EscrowCompleted:
			return nil, ErrEscrowCompleted
		case domain.EscrowDisputed:
			return nil, ErrAlreadyDisputed
		}

		prev := repository.LifecycleStateOf(escrow)

		next := *escrow
		next.Disputed = true
		next.DisputeReason.String = reason
		next.DisputeReason.Valid = true
		next.Status = next.DeriveStatus()

		err = s.escrowRepository.UpdateLifecycle(ctx, &next, prev)
		if errors.Is(err, domain.ErrNoRowsAffected) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("update escrow lifecycle failed: %w", err)
		}

		return &next, nil
	}

	return nil, ErrConcurrentUpdate
}

// SetWallet records the caller's settlement wallet on the escrow. It never
// transitions state by itself; wallet presence is only consulted at
// confirmation time.
func (s *escrowService) SetWallet(ctx context.Context, escrowID uuid.UUID, caller Caller, walletAddress string) (*domain.Escrow, error) {
	if !strings.HasPrefix(walletAddress, "0x") || !common.IsHexAddress(walletAddress) {
		return nil, ErrInvalidWallet
	}

	escrow, err := s.getEscrow(ctx, escrowID)
	if err != nil {
		return nil, err
	}

	if _, err := s.resolveParty(ctx, escrow, caller); err != nil {
		return nil, err
	}

	// A caller can be both parties of their own escrow; then the wallet
	// applies to both sides.
	var creatorWallet, recipientWallet *string
	if caller.ID == escrow.CreatorID {
		creatorWallet = &walletAddress
	}
	if (escrow.RecipientID != nil && *escrow.RecipientID == caller.ID) ||
		(escrow.RecipientID == nil && caller.Email == escrow.RecipientEmail) {
		recipientWallet = &walletAddress
	}

	if err := s.escrowRepository.UpdateWallets(ctx, escrow.ID, creatorWallet, recipientWallet); err != nil {
		return nil, fmt.Errorf("update escrow wallets failed: %w", err)
	}

	return s.getEscrow(ctx, escrowID)
}

func (s *escrowService) PostMessage(ctx context.Context, escrowID uuid.UUID, caller Caller, body string) (*domain.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrValidation
	}

	escrow, err := s.getEscrow(ctx, escrowID)
	if err != nil {
		return nil, err
	}

	if _, err := s.resolveParty(ctx, escrow, caller); err != nil {
		return nil, err
	}

	messageID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate message id failed: %w", err)
	}

	message := &domain.Message{
		ID:       messageID,
		EscrowID: escrow.ID,
		SenderID: caller.ID,
		Body:     body,
	}

	if err := s.messageRepository.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("create message failed: %w", err)
	}

	return message, nil
}

func (s *escrowService) ListMessages(ctx context.Context, escrowID uuid.UUID, caller Caller) ([]domain.Message, error) {
	escrow, err := s.getEscrow(ctx, escrowID)
	if err != nil {
		return nil, err
	}

	if _, err := s.resolveParty(ctx, escrow, caller); err != nil {
		return nil, err
	}

	return s.messageRepository.ListByEscrow(ctx, escrow.ID)
}

func (s *escrowService) getEscrow(ctx context.Context, escrowID uuid.UUID) (*domain.Escrow, error) {
	escrow, err := s.escrowRepository.GetByID(ctx, escrowID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrEscrowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get escrow failed: %w", err)
	}

	return escrow, nil
}

func (s *escrowService) notifyCreated(ctx context.Context, escrow *domain.Escrow, caller Caller) {
	creatorName := ""
	if creator, err := s.userRepository.GetByID(ctx, caller.ID); err == nil {
		creatorName = creator.DisplayName.String
	}

	s.enqueueNotification(ctx, task.EscrowNotification{
		Kind:        task.EscrowEmailKindCreated,
		Email:       caller.Email,
		Name:        creatorName,
		EscrowID:    escrow.ID.String(),
		TokenSymbol: escrow.TokenSymbol,
		Amount:      escrow.Amount,
	})
	s.enqueueNotification(ctx, task.EscrowNotification{
		Kind:        task.EscrowEmailKindReceived,
		Email:       escrow.RecipientEmail,
		EscrowID:    escrow.ID.String(),
		TokenSymbol: escrow.TokenSymbol,
		Amount:      escrow.Amount,
	})
}

// notifyConfirmed tells the counterparty about the confirmation; on
// completion both parties are told.
func (s *escrowService) notifyConfirmed(ctx context.Context, escrow *domain.Escrow, confirmedBy domain.EscrowRole) {
	completed := escrow.Status == domain.EscrowCompleted

	waitingFor := ""
	if !completed {
		if confirmedBy == domain.RoleCreator {
			waitingFor = "recipient"
		} else {
			waitingFor = "creator"
		}
	}

	base := task.EscrowNotification{
		Kind:        task.EscrowEmailKindConfirmation,
		EscrowID:    escrow.ID.String(),
		TokenSymbol: escrow.TokenSymbol,
		Amount:      escrow.Amount,
		IsCompleted: completed,
		WaitingFor:  waitingFor,
	}

	recipients := make([]string, 0, 2)
	if confirmedBy == domain.RoleCreator || completed {
		recipients = append(recipients, escrow.RecipientEmail)
	}
	if confirmedBy == domain.RoleRecipient || completed {
		if creator, err := s.userRepository.GetByID(ctx, escrow.CreatorID); err == nil {
			recipients = append(recipients, creator.Email)
		}
	}

	for _, email := range recipients {
		n := base
		n.Email = email
		s.enqueueNotification(ctx, n)
	}
}

func (s *escrowService) enqueueSettlement(ctx context.Context, escrow *domain.Escrow) {
	t, err := task.NewSettleEscrowTask(task.SettleEscrow{
		EscrowID:     escrow.ID.String(),
		FromWallet:   escrow.CreatorWallet.String,
		ToWallet:     escrow.RecipientWallet.String,
		TokenAddress: escrow.TokenAddress,
		Amount:       escrow.Amount,
	})
	if err != nil {
		logger.Error("build settle escrow task failed", zap.Error(err), zap.String("escrow_id", escrow.ID.String()))
		return
	}

	s.enqueue(ctx, t, "settle escrow")
}

func (s *escrowService) enqueueNotification(ctx context.Context, data task.EscrowNotification) {
	t, err := task.NewEscrowNotificationTask(data)
	if err != nil {
		logger.Error("build escrow notification task failed", zap.Error(err), zap.String("kind", data.Kind))
		return
	}

	s.enqueue(ctx, t, "escrow notification")
}

// enqueue is fire-and-forget: a queue failure is logged and never surfaced,
// the committed state transition is the source of truth regardless.
func (s *escrowService) enqueue(ctx context.Context, t *asynq.Task, what string) {
	cl := client.GetClient(ctx)
	if cl == nil {
		logger.Warn("queue client is not configured, dropping task", zap.String("task", what))
		return
	}

	if _, err := cl.EnqueueContext(ctx, t); err != nil {
		logger.Error("enqueue task failed", zap.Error(err), zap.String("task", what))
	}
}
