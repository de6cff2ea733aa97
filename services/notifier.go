// services/notifier.go
package services

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"salonbook-backend/models"

	"github.com/google/uuid"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

// Notifier sends booking lifecycle messages. Delivery is best-effort:
// implementations log failures and never return them, so a booking outcome
// is independent of notification delivery.
type Notifier interface {
	BookingCreated(appointmentID uuid.UUID)
	BookingRescheduled(appointmentID uuid.UUID)
	BookingCancelled(appointmentID uuid.UUID)
}

// TwilioNotifier delivers booking messages over SMS or WhatsApp and records
// every attempt in the notification log.
type TwilioNotifier struct {
	db     *gorm.DB
	client *twilio.RestClient
}

func NewTwilioNotifier(db *gorm.DB) *TwilioNotifier {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &TwilioNotifier{
		db: db,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
	}
}

func (n *TwilioNotifier) BookingCreated(appointmentID uuid.UUID) {
	n.send(appointmentID, "booking",
		"Hi %s, we received your booking for %s. We will confirm it shortly.")
}

func (n *TwilioNotifier) BookingRescheduled(appointmentID uuid.UUID) {
	n.send(appointmentID, "reschedule",
		"Hi %s, your appointment was moved to %s and awaits confirmation.")
}

func (n *TwilioNotifier) BookingCancelled(appointmentID uuid.UUID) {
	n.send(appointmentID, "cancellation",
		"Hi %s, your appointment on %s has been cancelled.")
}

func (n *TwilioNotifier) send(appointmentID uuid.UUID, kind, template string) {
	var appt models.Appointment
	if err := n.db.Preload("Client.User").First(&appt, "id = ?", appointmentID).Error; err != nil {
		log.Printf("Notification %s: failed to load appointment %s: %v", kind, appointmentID, err)
		return
	}

	phone := appt.Client.User.Phone
	if phone == "" {
		log.Printf("Notification %s: appointment %s client has no phone, skipping", kind, appointmentID)
		return
	}

	when := appt.StartTime.Format("Mon Jan 2 15:04")
	message := fmt.Sprintf(template, appt.Client.User.Name, when)

	// WhatsApp for E.164 numbers, plain SMS otherwise
	channel := "sms"
	to := phone
	if strings.HasPrefix(phone, "+") {
		to = "whatsapp:" + phone
		channel = "whatsapp"
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetBody(message)
	if channel == "whatsapp" {
		params.SetFrom("whatsapp:" + os.Getenv("TWILIO_WHATSAPP_NUMBER"))
	} else {
		params.SetFrom(os.Getenv("TWILIO_PHONE_NUMBER"))
	}

	resp, err := n.client.Api.CreateMessage(params)
	status := "sent"
	errorMsg := ""

	if err != nil {
		log.Printf("Failed to send %s message to %s: %v", kind, phone, err)
		status = "failed"
		errorMsg = err.Error()
	} else if resp.Sid != nil {
		log.Printf("Sent %s message to %s, SID: %s", kind, phone, *resp.Sid)
	} else {
		log.Printf("Sent %s message to %s, but no SID returned", kind, phone)
	}

	notificationLog := models.NotificationLog{
		AppointmentID: appt.ID,
		Kind:          kind,
		Message:       message,
		Status:        status,
		ErrorMessage:  errorMsg,
		Channel:       channel,
		SentAt:        time.Now(),
	}
	if err := n.db.Create(&notificationLog).Error; err != nil {
		log.Printf("Failed to log %s notification for appointment %s: %v", kind, appt.ID, err)
	}
}
