// Package processor turns one inbound SMS into a typed command, applies the
// side effects and produces the localized reply. It never refuses an input:
// whatever arrives, exactly one reply goes back.
package processor

import (
	"context"
	"strings"
	"time"

	"github.com/cshealth/reminder-gateway/internal/catalog"
	"github.com/cshealth/reminder-gateway/internal/dates"
	gateway "github.com/cshealth/reminder-gateway/internal/gateways"
	"github.com/cshealth/reminder-gateway/internal/model"
	"github.com/cshealth/reminder-gateway/internal/repository"
	"github.com/cshealth/reminder-gateway/pkg/logger"
	"github.com/cshealth/reminder-gateway/pkg/prom"
)

const stopKeyword = "stop"

const methodText = "text"

// Action is what the dispatcher decided to do with a message.
type Action string

const (
	ActionSubscribed        Action = "subscribed"
	ActionAlreadySubscribed Action = "already_subscribed"
	ActionCancelled         Action = "cancelled"
	ActionFailedDate        Action = "failed_date"
	ActionFailure           Action = "failure"
)

// Outcome reports what Process did, mostly for tests and job-level logging.
type Outcome struct {
	Action  Action
	Reply   string
	Contact *model.Contact
}

type Processor struct {
	contacts *repository.ContactRepository
	messages *repository.MessageRepository
	sender   gateway.Sender
	location *time.Location
	now      func() time.Time
}

func New(contacts *repository.ContactRepository, messages *repository.MessageRepository, sender gateway.Sender, location *time.Location) *Processor {
	return &Processor{
		contacts: contacts,
		messages: messages,
		sender:   sender,
		location: location,
		now:      time.Now,
	}
}

// Process handles one inbound message end to end: parse, side effects,
// message log, reply. Only storage failures surface as errors; a garbled
// message still gets its failure reply.
func (p *Processor) Process(ctx context.Context, phone, body string, receivedAt time.Time) (*Outcome, error) {
	outcome := p.dispatch(ctx, phone, body)

	contactID := p.resolveContactID(ctx, outcome.Contact, phone)

	incoming, err := p.messages.RecordIncoming(ctx, contactID, body, receivedAt)
	if err != nil {
		return nil, err
	}
	if err := p.messages.MarkProcessed(ctx, incoming.ID); err != nil {
		return nil, err
	}
	if contactID != nil {
		if err := p.contacts.UpdateLastHeardFrom(ctx, *contactID, p.now()); err != nil {
			logger.Error("failed to update last_heard_from", "contact_id", *contactID, "error", err)
		}
	}

	reply, err := p.messages.RecordOutgoing(ctx, contactID, outcome.Reply, nil, nil)
	if err != nil {
		return nil, err
	}

	if _, err := p.sender.Send(ctx, outcome.Reply, phone); err != nil {
		// The incoming row is already marked processed; the unsent reply
		// stays with sent_at null so it can be found later.
		logger.Error("failed to send reply", "phone", phone, "error", err)
		prom.IncCounterVec(prom.SystemInbox, prom.MetricInboxMessages, "reply_send_failed")
		return &outcome, nil
	}
	if err := p.messages.MarkSent(ctx, reply.ID, p.now()); err != nil {
		return nil, err
	}

	prom.IncCounterVec(prom.SystemInbox, prom.MetricInboxMessages, string(outcome.Action))
	return &outcome, nil
}

// dispatch runs the keyword table over the parsed message.
func (p *Processor) dispatch(ctx context.Context, phone, body string) Outcome {
	keyword, name, date := parse(body, dates.Today(p.location))

	if keyword == stopKeyword {
		return p.unsubscribe(ctx, phone)
	}

	if lang, ok := catalog.MatchSubscribeKeyword(keyword); ok {
		return p.subscribe(ctx, phone, lang, name, date)
	}

	lang := fallbackLanguage(keyword)
	logger.Error("unrecognized inbound keyword", "phone", phone, "body", body)
	return Outcome{
		Action: ActionFailure,
		Reply:  catalog.Get(catalog.KindFailure, lang),
	}
}

func (p *Processor) subscribe(ctx context.Context, phone string, lang model.Language, name string, date *time.Time) Outcome {
	if name == "" {
		name = catalog.PlaceholderChildName(lang)
	} else {
		name = titleCase(name)
	}

	if date == nil {
		return Outcome{
			Action: ActionFailedDate,
			Reply:  catalog.Get(catalog.KindFailedDate, lang),
		}
	}

	contact, created, err := p.contacts.UpsertBy(ctx, model.ContactCreateRequest{
		Name:           name,
		PhoneNumber:    phone,
		Language:       lang,
		DateOfBirth:    *date,
		DateOfSignUp:   dates.Today(p.location),
		MethodOfSignUp: methodText,
	})
	if err != nil {
		logger.Error("subscribe upsert failed", "phone", phone, "error", err)
		return Outcome{
			Action: ActionFailure,
			Reply:  catalog.Get(catalog.KindFailure, lang),
		}
	}

	for _, group := range signupGroups(lang) {
		if err := p.contacts.AddToGroup(ctx, contact.ID, group); err != nil {
			logger.Error("failed to add contact to group", "contact_id", contact.ID, "group", group, "error", err)
		}
	}

	if !created {
		return Outcome{
			Action:  ActionAlreadySubscribed,
			Reply:   catalog.Fill(catalog.Get(catalog.KindAlreadySubscribed, lang), contact.Name),
			Contact: contact,
		}
	}
	return Outcome{
		Action:  ActionSubscribed,
		Reply:   catalog.Fill(catalog.Get(catalog.KindSubscribe, lang), contact.Name),
		Contact: contact,
	}
}

// unsubscribe cancels every contact at the number. STOP carries no child
// selector and no language, so the reply is always English.
func (p *Processor) unsubscribe(ctx context.Context, phone string) Outcome {
	n, err := p.contacts.CancelByPhone(ctx, phone)
	if err != nil {
		logger.Error("cancel failed", "phone", phone, "error", err)
		return Outcome{
			Action: ActionFailure,
			Reply:  catalog.Get(catalog.KindFailure, model.LanguageEnglish),
		}
	}
	if n == 0 {
		logger.Warn("stop from a number with no active contacts", "phone", phone)
	}
	return Outcome{
		Action: ActionCancelled,
		Reply:  catalog.Get(catalog.KindUnsubscribe, model.LanguageEnglish),
	}
}

func (p *Processor) resolveContactID(ctx context.Context, contact *model.Contact, phone string) *int64 {
	if contact != nil {
		return &contact.ID
	}
	found, err := p.contacts.FindByPhone(ctx, phone)
	if err != nil || len(found) == 0 {
		return nil
	}
	return &found[0].ID
}

// parse splits the body into (keyword, name, date) per the 1/2/3-token rule.
// The keyword is matched lowercased; the name keeps the sender's casing.
func parse(body string, today time.Time) (keyword, name string, date *time.Time) {
	tokens := strings.Fields(body)
	if len(tokens) == 0 {
		return "", "", nil
	}

	keyword = strings.ToLower(tokens[0])

	var dateToken string
	switch {
	case len(tokens) == 1:
	case len(tokens) == 2:
		dateToken = tokens[1]
	default:
		name = tokens[1]
		dateToken = tokens[2]
	}

	if dateToken != "" {
		if d, err := dates.ParseInbound(dateToken, today); err == nil {
			date = &d
		}
	}
	return keyword, name, date
}

// fallbackLanguage guesses the language of a message whose keyword matched
// nothing: a Latin-letter lead reads as English, anything else as Hindi.
// The keyword arrives already lowercased, so 'a'..'z' covers all letters.
func fallbackLanguage(keyword string) model.Language {
	if keyword == "" {
		return model.LanguageEnglish
	}
	if c := keyword[0]; c >= 'a' && c <= 'z' {
		return model.LanguageEnglish
	}
	return model.LanguageHindi
}

// titleCase upper-cases the leading letter of each ASCII word, leaving the
// rest of the word alone so "TestPerson" stays "TestPerson". Non-ASCII words
// pass through untouched.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if w[0] >= 'a' && w[0] <= 'z' {
			words[i] = string(w[0]-'a'+'A') + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func signupGroups(lang model.Language) []string {
	return []string{
		"Everyone - " + string(lang),
		"Text Sign Ups",
		"Text Sign Ups - " + string(lang),
	}
}
