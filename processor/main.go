package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
	"gorm.io/gorm"

	"github.com/codigix/Aluminium-erp-sub006/config"
	"github.com/codigix/Aluminium-erp-sub006/models"
	"github.com/codigix/Aluminium-erp-sub006/repositories"
	"github.com/codigix/Aluminium-erp-sub006/utils"
)

const outboxBatchSize = 20

// The processor drains the notification outbox. Rows are written by the API
// in the same transaction as the state change they describe; this binary
// delivers them after commit and records the outcome per row, so a mail
// failure can never undo a committed transition.
func main() {
	config.LoadConfig()
	logger := config.GetLogger()

	db, err := config.OpenDatabaseConnection()
	if err != nil {
		logger.Fatalf("failed to connect to database: %v", err)
	}

	logger.WithField("poll_seconds", config.OutboxPollSeconds).Info("outbox processor started")

	ticker := time.NewTicker(time.Duration(config.OutboxPollSeconds) * time.Second)
	defer ticker.Stop()

	for {
		drainOutbox(db, logger)
		<-ticker.C
	}
}

func drainOutbox(db *gorm.DB, logger *logrus.Logger) {
	repo := repositories.NewOutboxRepository(db)

	rows, err := repo.FetchPending(outboxBatchSize, config.OutboxMaxAttempts)
	if err != nil {
		config.LogError(logger, "processor", "drainOutbox", "fetch pending", nil, err)
		return
	}

	for _, row := range rows {
		if err := deliver(db, row); err != nil {
			config.LogError(logger, "processor", "deliver", "send notification", row.ID, err)
			if markErr := repo.MarkFailed(row.ID, err, config.OutboxMaxAttempts); markErr != nil {
				config.LogError(logger, "processor", "deliver", "mark failed", row.ID, markErr)
			}
			continue
		}
		if err := repo.MarkSent(row.ID); err != nil {
			config.LogError(logger, "processor", "deliver", "mark sent", row.ID, err)
			continue
		}
		logger.WithField("outbox_id", row.ID).Info("notification sent")
	}
}

func deliver(db *gorm.DB, row models.NotificationOutbox) error {
	recipients := resolveRecipients(row)
	if len(recipients) == 0 {
		return errors.New("no recipients configured")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", config.SMTPSender)
	msg.SetHeader("To", recipients...)
	msg.SetHeader("Subject", row.Subject)
	msg.SetBody("text/html", renderBody(row))

	if row.ReferenceType == "DELIVERY_CHALLAN" {
		if err := attachChallan(db, msg, row.ReferenceID); err != nil {
			return err
		}
	}

	dialer := gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.SMTPSender, config.SMTPPassword)
	return dialer.DialAndSend(msg)
}

func resolveRecipients(row models.NotificationOutbox) []string {
	if row.Recipient != "" {
		return []string{row.Recipient}
	}
	return config.NotifyEmails
}

func renderBody(row models.NotificationOutbox) string {
	return fmt.Sprintf(`
		<html>
			<body>
				<h3>%s</h3>
				<pre>%s</pre>
				<p>This is an auto-generated email. Please do not reply.</p>
			</body>
		</html>
	`, row.Subject, row.Payload)
}

func attachChallan(db *gorm.DB, msg *gomail.Message, challanID uint) error {
	var challan models.DeliveryChallan
	if err := db.Preload("Items").First(&challan, challanID).Error; err != nil {
		return err
	}

	workbook, err := utils.RenderChallanWorkbook(&challan)
	if err != nil {
		return err
	}

	msg.Attach(challan.ChallanNo+".xlsx", gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := workbook.WriteTo(w)
		return err
	}))
	return nil
}
