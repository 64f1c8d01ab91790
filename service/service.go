package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/andresvm/email-autosend/dao"
	"github.com/andresvm/email-autosend/mail"
	"github.com/andresvm/email-autosend/model"
	"github.com/andresvm/email-autosend/service/dto"
	"github.com/andresvm/email-autosend/util"
	"github.com/cskr/pubsub"
	"github.com/dchest/uniuri"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	//PROGRESS is the pubsub topic carrying per-recipient dispatch outcomes
	PROGRESS = "progress"

	//ReasonInvalidEmail marks recipients whose address failed shape validation
	ReasonInvalidEmail = "invalid email"

	//DefaultEmailMask is the address shape accepted for dispatch
	DefaultEmailMask = `^[^\s@]+@[^\s@]+\.[^\s@]+$`
)

type InvalidPayloadErr struct {
	message string
}

func (e *InvalidPayloadErr) Error() string {
	return e.message
}

func NewInvalidPayloadError(msg string) *InvalidPayloadErr {
	return &InvalidPayloadErr{message: msg}
}

// Outcome is the settled result of one recipient within a dispatch run.
type Outcome struct {
	Recipient model.Recipient
	Sent      bool
	Reason    string
}

type Service interface {
	//SendOne validates and sends a single greeting email, returning a confirmation message
	SendOne(user dto.User) (string, error)
	//Dispatch sends to every user sequentially with the configured inter-send
	//delay and yields one Outcome per user, in input order. An empty input
	//yields a closed channel with no outcomes. A run never aborts early;
	//per-recipient failures are reported through their Outcome.
	Dispatch(users []dto.User) <-chan Outcome
	//SendBulk drains Dispatch into the aggregate wire result
	SendBulk(users []dto.User) (dto.BulkResults, string, error)
	//SaveEntry appends one uploaded payload to the entry log
	SaveEntry(data map[string]string) (dto.Entry, error)
	//GetPage returns one page of the entry log
	GetPage(page, limit int) (dto.Page, error)
	//ClearEntries removes the whole entry log
	ClearEntries() error
	//SubscribeProgress returns a channel of Outcome values for all runs
	SubscribeProgress() chan interface{}
	//UnsubscribeProgress releases a channel obtained from SubscribeProgress
	UnsubscribeProgress(ch chan interface{})
}

type service struct {
	mailer    mail.Mailer
	entryDao  dao.EntryDao
	ps        *pubsub.PubSub
	emailRx   *regexp.Regexp
	sendDelay time.Duration
}

func NewService(mailer mail.Mailer, entryDao dao.EntryDao, sendDelayMs int, emailMask string) Service {
	return &service{
		mailer:    mailer,
		entryDao:  entryDao,
		ps:        pubsub.New(100),
		emailRx:   regexp.MustCompile(emailMask),
		sendDelay: time.Duration(sendDelayMs) * time.Millisecond,
	}
}

func (s *service) SendOne(user dto.User) (string, error) {
	if util.IsBlank(user.Name) || util.IsBlank(user.Email) {
		return "", NewInvalidPayloadError("Name and email are required")
	}

	if !s.emailRx.MatchString(user.Email) {
		return "", NewInvalidPayloadError("Invalid email format")
	}

	err := s.mailer.Send(context.Background(), user.Email, mail.GreetingSubject(user.Name), mail.GreetingBody(user.Name))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Email sent successfully to %s (%s)", user.Name, user.Email), nil
}

func (s *service) Dispatch(users []dto.User) <-chan Outcome {
	out := make(chan Outcome)

	go func() {
		defer close(out)

		runId := uniuri.New()
		//fresh limiter per run: the first send goes out immediately, every
		//following send waits out the inter-send delay
		limiter := rate.NewLimiter(rate.Every(s.sendDelay), 1)

		for _, user := range users {
			//runs are not cancellable once started
			_ = limiter.Wait(context.Background())

			outcome := s.sendTo(user)

			zap.L().Info("dispatch progress",
				zap.String("run", runId),
				zap.String("email", outcome.Recipient.Email),
				zap.Bool("sent", outcome.Sent))

			s.ps.Pub(outcome, PROGRESS)
			out <- outcome
		}
	}()

	return out
}

func (s *service) sendTo(user dto.User) Outcome {
	recipient := model.Recipient{Name: user.Name, Email: user.Email}

	//invalid addresses never reach the transport
	if !s.emailRx.MatchString(user.Email) {
		return Outcome{Recipient: recipient, Reason: ReasonInvalidEmail}
	}

	err := s.mailer.Send(context.Background(), user.Email, mail.GreetingSubject(user.Name), mail.GreetingBody(user.Name))
	if err != nil {
		return Outcome{Recipient: recipient, Reason: err.Error()}
	}

	return Outcome{Recipient: recipient, Sent: true}
}

func (s *service) SendBulk(users []dto.User) (dto.BulkResults, string, error) {
	if len(users) == 0 {
		return dto.BulkResults{}, "", NewInvalidPayloadError("A non-empty users array is required")
	}

	results := dto.BulkResults{Success: []dto.User{}, Failed: []dto.FailedUser{}}

	for outcome := range s.Dispatch(users) {
		if outcome.Sent {
			results.Success = append(results.Success, dto.User{Name: outcome.Recipient.Name, Email: outcome.Recipient.Email})
		} else {
			results.Failed = append(results.Failed, dto.FailedUser{Name: outcome.Recipient.Name, Email: outcome.Recipient.Email, Reason: outcome.Reason})
		}
	}

	message := fmt.Sprintf("Completed: %d sent, %d failed", len(results.Success), len(results.Failed))

	return results, message, nil
}

func (s *service) SaveEntry(data map[string]string) (dto.Entry, error) {
	if len(data) == 0 {
		return dto.Entry{}, NewInvalidPayloadError("No JSON file or body provided")
	}

	entry, err := s.entryDao.Create(data)
	if err != nil {
		return dto.Entry{}, err
	}

	return dto.Entry{Id: entry.Id, CreatedAt: entry.CreatedAt, Data: entry.Data}, nil
}

func (s *service) GetPage(page, limit int) (dto.Page, error) {
	items, total, err := s.entryDao.GetPage(page, limit)
	if err != nil {
		return dto.Page{}, err
	}

	entries := []dto.Entry{}
	for _, item := range items {
		entries = append(entries, dto.Entry{Id: item.Id, CreatedAt: item.CreatedAt, Data: item.Data})
	}

	return dto.Page{
		Success: true,
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasMore: page*limit < total,
		Items:   entries,
	}, nil
}

func (s *service) ClearEntries() error {
	return s.entryDao.Clear()
}

func (s *service) SubscribeProgress() chan interface{} {
	return s.ps.Sub(PROGRESS)
}

func (s *service) UnsubscribeProgress(ch chan interface{}) {
	s.ps.Unsub(ch, PROGRESS)
}
