package contact

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kapu/higapro-site/internal/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRelay struct {
	calls []Form
	err   error
}

func (f *fakeRelay) Relay(ctx context.Context, form Form) error {
	f.calls = append(f.calls, form)
	return f.err
}

type recordingNotifier struct {
	shown []Notification
}

func (r *recordingNotifier) Notify(n Notification) {
	r.shown = append(r.shown, n)
}

func validForm() Form {
	return Form{
		Name:    "山田太郎",
		Email:   "yamada@example.com",
		Subject: "出演依頼",
		Message: "よろしくお願いします",
	}
}

func TestValidatorMessages(t *testing.T) {
	v := NewValidator()

	assert.Nil(t, v.Validate(validForm()))

	errs := v.Validate(Form{Email: "not-an-email"})
	assert.Equal(t, FieldErrors{
		"name":    "1文字以上の文字列である必要があります",
		"email":   "メールアドレスの形式で入力してください",
		"subject": "1文字以上の文字列である必要があります",
		"message": "1文字以上の文字列である必要があります",
	}, errs)
}

func TestSubmitInvalidEmailMakesNoRelayCall(t *testing.T) {
	relay := &fakeRelay{}
	notifier := &recordingNotifier{}
	form := validForm()
	form.Email = "not-an-email"

	result := NewSubmitter(NewValidator(), relay, zap.NewNop()).Submit(context.Background(), form, notifier)

	assert.Empty(t, relay.calls)
	assert.Empty(t, notifier.shown)
	assert.Equal(t, StateIdle, result.Outcome)
	assert.Contains(t, result.FieldErrors, "email")
	assert.Equal(t, []State{StateIdle, StateValidating, StateIdle}, result.Transitions)
}

func TestSubmitSuccess(t *testing.T) {
	relay := &fakeRelay{}
	notifier := &recordingNotifier{}
	var outcomes []string

	submitter := NewSubmitter(NewValidator(), relay, zap.NewNop()).
		WithObserver(func(outcome string) { outcomes = append(outcomes, outcome) })
	result := submitter.Submit(context.Background(), validForm(), notifier)

	require.Len(t, relay.calls, 1)
	assert.Equal(t, validForm(), relay.calls[0])
	assert.Equal(t, StateSucceeded, result.Outcome)
	assert.Equal(t, []State{StateIdle, StateValidating, StateSubmitting, StateSucceeded, StateIdle}, result.Transitions)
	assert.Equal(t, []string{"succeeded"}, outcomes)

	require.Len(t, notifier.shown, 2)
	loading, done := notifier.shown[0], notifier.shown[1]
	assert.Equal(t, NotificationLoading, loading.Kind)
	assert.Equal(t, "送信しています…", loading.Message)
	assert.Zero(t, loading.AutoClose)
	assert.Equal(t, loading.ID, done.ID)
	assert.Equal(t, NotificationSuccess, done.Kind)
	assert.Equal(t, "メッセージを送信しました", done.Message)
	assert.Equal(t, 5.0, done.AutoClose.Seconds())
}

func TestSubmitFailure(t *testing.T) {
	relay := &fakeRelay{err: fmt.Errorf("relay down")}
	notifier := &recordingNotifier{}

	result := NewSubmitter(NewValidator(), relay, zap.NewNop()).Submit(context.Background(), validForm(), notifier)

	assert.Len(t, relay.calls, 1)
	assert.Equal(t, StateFailed, result.Outcome)
	assert.EqualError(t, result.Err, "relay down")
	assert.Equal(t, []State{StateIdle, StateValidating, StateSubmitting, StateFailed, StateIdle}, result.Transitions)
	require.NotNil(t, result.Notification)
	assert.Equal(t, NotificationError, result.Notification.Kind)
	assert.Equal(t, "送信に失敗しました", result.Notification.Message)
}

func TestSubmitDoesNotDeduplicate(t *testing.T) {
	relay := &fakeRelay{}
	submitter := NewSubmitter(NewValidator(), relay, zap.NewNop())

	submitter.Submit(context.Background(), validForm(), nil)
	submitter.Submit(context.Background(), validForm(), nil)

	assert.Len(t, relay.calls, 2)
}

type fakeSender struct {
	sent []mail.Message
}

func (f *fakeSender) Send(ctx context.Context, msg mail.Message) error {
	f.sent = append(f.sent, msg)
	return nil
}

func TestMailRelayForwardsFields(t *testing.T) {
	sender := &fakeSender{}
	require.NoError(t, NewMailRelay(sender).Relay(context.Background(), validForm()))

	assert.Equal(t, []mail.Message{{
		Name:    "山田太郎",
		Email:   "yamada@example.com",
		Subject: "出演依頼",
		Text:    "よろしくお願いします",
	}}, sender.sent)
}

func TestHTTPRelay(t *testing.T) {
	var received Form
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	err := NewHTTPRelay(server.URL, zap.NewNop()).Relay(context.Background(), validForm())
	require.NoError(t, err)
	assert.Equal(t, validForm(), received)
}

func TestHTTPRelayCarriesRelayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Invalid login: 535"}`))
	}))
	defer server.Close()

	err := NewHTTPRelay(server.URL, zap.NewNop()).Relay(context.Background(), validForm())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid login: 535")
}
