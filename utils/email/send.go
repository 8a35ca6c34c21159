package email

import (
	"bibgraph-backend/utils"
	"gopkg.in/gomail.v2"
)

func SendHtml(email string, subject string, htmlContent string) error {
	msg := gomail.NewMessage()

	from := globalConfig.SMTP.Identity
	if len(from) == 0 {
		from = globalConfig.SMTP.UserName
	}

	msg.SetHeader("From", from)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", subject)

	msg.SetBody("text/html", htmlContent)

	dialer := gomail.NewDialer(
		globalConfig.SMTP.Host,
		globalConfig.SMTP.Port,
		globalConfig.SMTP.UserName,
		globalConfig.SMTP.Password)

	if err := dialer.DialAndSend(msg); err != nil {
		return utils.WrapErrorf(err, "dial and send to [%s] fail", email)
	}

	return nil
}
