package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tokenvault/backend/internal/config"
	emailProvider "github.com/tokenvault/backend/pkg/email"
	"github.com/tokenvault/backend/pkg/logger"
)

type emailSender struct {
	sender emailProvider.Sender
	config config.EmailConfig
}

func newEmailSender(
	sender emailProvider.Sender,
	config config.EmailConfig,
) *emailSender {
	return &emailSender{
		sender: sender,
		config: config,
	}
}

type loginCodeEmailInput struct {
	Name string
	Code string
}

func (s *emailSender) SendLoginCode(ctx context.Context, email string, code string, name string) error {
	subject := "Your login code"

	return s.send(email, subject, s.config.Templates.LoginCode, loginCodeEmailInput{Name: name, Code: code})
}

type welcomeEmailInput struct {
	Name string
}

func (s *emailSender) SendWelcomeEmail(ctx context.Context, email string, name string) error {
	subject := "Welcome to TokenVault"

	return s.send(email, subject, s.config.Templates.Welcome, welcomeEmailInput{Name: name})
}

type escrowEmailInput struct {
	Name        string
	EscrowID    string
	TokenSymbol string
	Amount      string
	IsCompleted bool
	WaitingFor  string
}

func (s *emailSender) SendEscrowCreatedEmail(ctx context.Context, input EscrowEmailInput) error {
	subject := fmt.Sprintf("Escrow created: %s %s", input.Amount, input.TokenSymbol)

	return s.send(input.Email, subject, s.config.Templates.EscrowCreated, escrowEmailInput{
		Name:        input.Name,
		EscrowID:    input.EscrowID,
		TokenSymbol: input.TokenSymbol,
		Amount:      input.Amount,
	})
}

func (s *emailSender) SendEscrowReceivedEmail(ctx context.Context, input EscrowEmailInput) error {
	subject := fmt.Sprintf("You received an escrow: %s %s", input.Amount, input.TokenSymbol)

	return s.send(input.Email, subject, s.config.Templates.EscrowReceived, escrowEmailInput{
		Name:        input.Name,
		EscrowID:    input.EscrowID,
		TokenSymbol: input.TokenSymbol,
		Amount:      input.Amount,
	})
}

func (s *emailSender) SendEscrowConfirmationEmail(ctx context.Context, input EscrowEmailInput, isCompleted bool, waitingFor string) error {
	subject := "Escrow confirmation update"
	if isCompleted {
		subject = "Escrow completed"
	}

	return s.send(input.Email, subject, s.config.Templates.EscrowConfirmation, escrowEmailInput{
		Name:        input.Name,
		EscrowID:    input.EscrowID,
		TokenSymbol: input.TokenSymbol,
		Amount:      input.Amount,
		IsCompleted: isCompleted,
		WaitingFor:  waitingFor,
	})
}

func (s *emailSender) send(to, subject, templateName string, data interface{}) error {
	if !s.config.Enabled {
		logger.Debug("email sending disabled, skipping",
			zap.String("to", to),
			zap.String("subject", subject))
		return nil
	}

	sendInput := emailProvider.SendEmailInput{Subject: subject, To: to}

	if err := sendInput.GenerateBodyFromHTML(templateName, data); err != nil {
		return fmt.Errorf("generate email failed: %w", err)
	}

	if err := s.sender.Send(sendInput); err != nil {
		return fmt.Errorf("send email failed: %w", err)
	}

	return nil
}
