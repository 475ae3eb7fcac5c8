package port

import (
	"context"

	"github.com/aurelle-shop/fulfillment/internal/core/domain"
)

// EmailSender delivers a single rendered transactional email.
type EmailSender interface {
	Send(ctx context.Context, msg domain.EmailMessage) error
}
