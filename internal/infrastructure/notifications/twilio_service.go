package notifications

import (
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	"github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"github.com/you/consultsite/domain"
	"github.com/you/consultsite/internal/logger"
)

// messageCreator is the slice of the Twilio API the sender needs.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioServiceImpl delivers one-time codes by SMS. When no sender number is
// configured the message body is logged instead, which is how local setups
// read their codes.
type TwilioServiceImpl struct {
	api        messageCreator
	fromNumber string
}

func NewTwilioService(accountSID, authToken, fromNumber string) domain.NotificationService {
	rest := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioServiceImpl{api: rest.Api, fromNumber: fromNumber}
}

// SendSMS implements domain.NotificationService
func (t *TwilioServiceImpl) SendSMS(to, message string) error {
	if t.fromNumber == "" {
		logger.Info("sms not sent, twilio is not configured",
			zap.String("to", to),
			zap.String("body", message),
		)
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.fromNumber)
	params.SetBody(message)

	resp, err := t.api.CreateMessage(params)
	if err != nil {
		var restErr *client.TwilioRestError
		if errors.As(err, &restErr) {
			logger.Warn("twilio rejected sms",
				zap.String("to", to),
				zap.Int("code", restErr.Code),
				zap.Int("status", restErr.Status),
			)
			return fmt.Errorf("failed to send SMS: twilio error %d: %s", restErr.Code, restErr.Message)
		}
		return fmt.Errorf("failed to send SMS: %w", err)
	}

	if resp != nil && resp.Sid != nil {
		logger.Debug("sms queued", zap.String("to", to), zap.String("sid", *resp.Sid))
	}
	return nil
}
