package main

import (
	"github.com/andresvm/email-autosend/controller"
	"github.com/andresvm/email-autosend/dao"
	_ "github.com/andresvm/email-autosend/docs"
	"github.com/andresvm/email-autosend/log"
	"github.com/andresvm/email-autosend/mail"
	"github.com/andresvm/email-autosend/service"
	"github.com/andresvm/email-autosend/util"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

// @title Email sender HTTP API
// @description Stores uploaded contact lists and relays email-send requests

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Error.Println(err)
	}
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	//create db client
	dbClient, err := dao.GetClient(util.GetEnv("DB_PATH", "data.db"))
	if err != nil {
		log.Fatal(err)
	}

	mailer := newMailer()

	emailService := service.NewService(
		mailer,
		dao.NewEntryDao(dbClient),
		util.GetEnvAsInt("SEND_DELAY_MS", 500),
		util.GetEnv("EMAIL_MASK", service.DefaultEmailMask),
	)

	//log per-recipient dispatch progress
	progress := emailService.SubscribeProgress()
	go func() {
		for msg := range progress {
			outcome := msg.(service.Outcome)
			zap.L().Info("recipient settled",
				zap.String("email", outcome.Recipient.Email),
				zap.Bool("sent", outcome.Sent),
				zap.String("reason", outcome.Reason))
		}
	}()

	//attach http handlers
	e := echo.New()
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.HideBanner = true
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit("2M"))

	bindRoutes(e, emailService)

	//start http server
	log.Fatal(e.Start(":" + util.GetEnv("HTTP_PORT", "3000")))
}

func newMailer() mail.Mailer {
	from := util.GetEnv("MAIL_FROM", "noreply@localhost")

	switch util.GetEnv("MAIL_PROVIDER", "noop") {
	case "resend":
		return mail.NewResendMailer(util.GetEnv("RESEND_API_KEY", ""), from)
	case "ses":
		mailer, err := mail.NewSESMailer(
			util.GetEnv("AWS_ACCESS_KEY", ""),
			util.GetEnv("AWS_SECRET_KEY", ""),
			util.GetEnv("AWS_REGION", "us-east-1"),
			from)
		if err != nil {
			log.Fatal(err)
		}
		return mailer
	default:
		log.Warn.Println("no mail provider configured, using noop mailer")
		return mail.NewNoopMailer()
	}
}

func bindRoutes(e *echo.Echo, srv service.Service) {

	e.GET("/health", controller.GetHealthFunc())

	e.POST("/api/send-email", controller.GetSendEmailFunc(srv))

	e.POST("/api/send-bulk-emails", controller.GetSendBulkEmailsFunc(srv))

	e.POST("/api/upload-json", controller.GetUploadJsonFunc(srv))

	e.GET("/api/data", controller.GetDataFunc(srv))

	e.DELETE("/api/data", controller.GetDeleteDataFunc(srv))
}
