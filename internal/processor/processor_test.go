package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cshealth/reminder-gateway/internal/catalog"
	gateway "github.com/cshealth/reminder-gateway/internal/gateways"
	"github.com/cshealth/reminder-gateway/internal/model"
	"github.com/cshealth/reminder-gateway/internal/repository"
	"github.com/cshealth/reminder-gateway/pkg/pg"
)

type sentMessage struct {
	Body  string
	Phone string
}

type fakeSender struct {
	sent []sentMessage
	err  error
}

func (f *fakeSender) Send(_ context.Context, body, phone string) (*gateway.SendResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, sentMessage{Body: body, Phone: phone})
	return &gateway.SendResult{Success: true}, nil
}

type fixture struct {
	proc     *Processor
	contacts *repository.ContactRepository
	messages *repository.MessageRepository
	sender   *fakeSender
}

func setup(t *testing.T) *fixture {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gdb.AutoMigrate(
		&repository.ContactEntity{},
		&repository.GroupEntity{},
		&repository.ContactGroupEntity{},
		&repository.MessageEntity{},
	))

	db := pg.FromGorm(gdb)
	contacts := repository.NewContactRepository(db)
	messages := repository.NewMessageRepository(db)
	sender := &fakeSender{}

	return &fixture{
		proc:     New(contacts, messages, sender, time.UTC),
		contacts: contacts,
		messages: messages,
		sender:   sender,
	}
}

func TestProcess_EnglishSignup(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	outcome, err := f.proc.Process(ctx, "+15551234567", "JOIN TestPerson 30/1/2017", time.Now())
	require.NoError(t, err)
	assert.Equal(t, ActionSubscribed, outcome.Action)

	found, err := f.contacts.FindByPhone(ctx, "+15551234567")
	require.NoError(t, err)
	require.Len(t, found, 1)
	c := found[0]
	assert.Equal(t, "TestPerson", c.Name)
	assert.Equal(t, "+15551234567", c.PhoneNumber)
	assert.Equal(t, model.LanguageEnglish, c.Language)
	assert.True(t, c.DateOfBirth.Equal(time.Date(2017, time.January, 30, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "text", c.MethodOfSignUp)

	groups, err := f.contacts.GroupsOf(ctx, c.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{"Everyone - English", "Text Sign Ups", "Text Sign Ups - English"},
		groups)

	require.Len(t, f.sender.sent, 1)
	assert.Equal(t,
		"TestPerson has been subscribed to CSH health reminders. Text STOP to unsubscribe.",
		f.sender.sent[0].Body)
	assert.Equal(t, "+15551234567", f.sender.sent[0].Phone)

	dir := model.DirectionOutgoing
	logged, _, err := f.messages.List(ctx, model.MessageFilter{ContactID: &c.ID, Direction: &dir})
	require.NoError(t, err)
	require.Len(t, logged, 1)
	assert.Equal(t, f.sender.sent[0].Body, logged[0].Body)
	assert.True(t, logged[0].IsProcessed)
	assert.NotNil(t, logged[0].SentAt)
}

func TestProcess_HindiSignup(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	outcome, err := f.proc.Process(ctx, "+919876543210", "याद आरव 11/09/2013", time.Now())
	require.NoError(t, err)
	assert.Equal(t, ActionSubscribed, outcome.Action)

	found, err := f.contacts.FindByPhone(ctx, "+919876543210")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "आरव", found[0].Name)
	assert.Equal(t, model.LanguageHindi, found[0].Language)
	assert.True(t, found[0].DateOfBirth.Equal(time.Date(2013, time.September, 11, 0, 0, 0, 0, time.UTC)))

	require.Len(t, f.sender.sent, 1)
	assert.Equal(t,
		catalog.Fill(catalog.Get(catalog.KindSubscribe, model.LanguageHindi), "आरव"),
		f.sender.sent[0].Body)
}

func TestProcess_MalformedDate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	outcome, err := f.proc.Process(ctx, "+15551234567", "JOIN PAULA 25:11:2012", time.Now())
	require.NoError(t, err)
	assert.Equal(t, ActionFailedDate, outcome.Action)

	found, err := f.contacts.FindByPhone(ctx, "+15551234567")
	require.NoError(t, err)
	assert.Empty(t, found)

	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, catalog.Get(catalog.KindFailedDate, model.LanguageEnglish), f.sender.sent[0].Body)

	// The incoming message is still logged, without a contact.
	dir := model.DirectionIncoming
	logged, _, err := f.messages.List(ctx, model.MessageFilter{Direction: &dir})
	require.NoError(t, err)
	require.Len(t, logged, 1)
	assert.Equal(t, "JOIN PAULA 25:11:2012", logged[0].Body)
	assert.Nil(t, logged[0].ContactID)
	assert.True(t, logged[0].IsProcessed)
}

func TestProcess_UnknownKeyword(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	outcome, err := f.proc.Process(ctx, "+15551234567", "JLORN COACHZ 25-11-2012", time.Now())
	require.NoError(t, err)
	assert.Equal(t, ActionFailure, outcome.Action)

	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, catalog.Get(catalog.KindFailure, model.LanguageEnglish), f.sender.sent[0].Body)
}

func TestProcess_DigitLedMessageGetsHindiFailure(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	outcome, err := f.proc.Process(ctx, "+919876500001", "123 hello", time.Now())
	require.NoError(t, err)
	assert.Equal(t, ActionFailure, outcome.Action)

	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, catalog.Get(catalog.KindFailure, model.LanguageHindi), f.sender.sent[0].Body)
}

func TestProcess_StopCancels(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.proc.Process(ctx, "+15551112222", "JOIN Asha 11/09/2013", time.Now())
	require.NoError(t, err)
	f.sender.sent = nil

	outcome, err := f.proc.Process(ctx, "+15551112222", "STOP", time.Now())
	require.NoError(t, err)
	assert.Equal(t, ActionCancelled, outcome.Action)

	found, err := f.contacts.FindByPhone(ctx, "+15551112222")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.True(t, found[0].Cancelled)

	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, catalog.Get(catalog.KindUnsubscribe, model.LanguageEnglish), f.sender.sent[0].Body)
}

func TestProcess_RepeatSignup(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.proc.Process(ctx, "+15551234567", "JOIN TestPerson 30/1/2017", time.Now())
	require.NoError(t, err)
	f.sender.sent = nil

	outcome, err := f.proc.Process(ctx, "+15551234567", "JOIN TestPerson 30/1/2017", time.Now())
	require.NoError(t, err)
	assert.Equal(t, ActionAlreadySubscribed, outcome.Action)

	found, err := f.contacts.FindByPhone(ctx, "+15551234567")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	require.Len(t, f.sender.sent, 1)
	assert.Equal(t,
		catalog.Fill(catalog.Get(catalog.KindAlreadySubscribed, model.LanguageEnglish), "TestPerson"),
		f.sender.sent[0].Body)
}

func TestProcess_MissingNameUsesPlaceholder(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// Two tokens: keyword and date, no name.
	outcome, err := f.proc.Process(ctx, "+919876543210", "JOIN 11/09/2013", time.Now())
	require.NoError(t, err)
	assert.Equal(t, ActionSubscribed, outcome.Action)

	found, err := f.contacts.FindByPhone(ctx, "+919876543210")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Your child", found[0].Name)
}

func TestProcess_SendFailureStillLogs(t *testing.T) {
	f := setup(t)
	f.sender.err = errors.New("gateway down")
	ctx := context.Background()

	outcome, err := f.proc.Process(ctx, "+15551234567", "JOIN TestPerson 30/1/2017", time.Now())
	require.NoError(t, err)
	assert.Equal(t, ActionSubscribed, outcome.Action)

	// The reply row exists but was never marked sent.
	dir := model.DirectionOutgoing
	logged, _, err := f.messages.List(ctx, model.MessageFilter{Direction: &dir})
	require.NoError(t, err)
	require.Len(t, logged, 1)
	assert.Nil(t, logged[0].SentAt)
	assert.False(t, logged[0].IsProcessed)
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Paula", titleCase("paula"))
	assert.Equal(t, "TestPerson", titleCase("TestPerson"))
	assert.Equal(t, "आरव", titleCase("आरव"))
	assert.Equal(t, "Mary Jane", titleCase("mary jane"))
}

func TestFallbackLanguage(t *testing.T) {
	assert.Equal(t, model.LanguageEnglish, fallbackLanguage("jlorn"))
	assert.Equal(t, model.LanguageHindi, fallbackLanguage("नमस्ते"))
	assert.Equal(t, model.LanguageEnglish, fallbackLanguage(""))

	// Only a Latin letter counts as English; digits and punctuation don't.
	assert.Equal(t, model.LanguageHindi, fallbackLanguage("123"))
	assert.Equal(t, model.LanguageHindi, fallbackLanguage("?help"))
}
