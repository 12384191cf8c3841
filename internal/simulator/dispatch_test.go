package simulator_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/webotp/internal/pkg/clock"
	"github.com/shandysiswandi/webotp/internal/pkg/hash"
	"github.com/shandysiswandi/webotp/internal/pkg/messaging"
	"github.com/shandysiswandi/webotp/internal/simulator"
	"github.com/shandysiswandi/webotp/internal/webotp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func TestHub_StreamsEvents(t *testing.T) {
	hub := simulator.NewHub(0)
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	t.Cleanup(func() { _ = hub.Close() })

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, hub.Dispatch(context.Background(), webotp.Event{Name: webotp.EventAutofill, OTP: "123456", At: at}))

	sc := bufio.NewScanner(resp.Body)
	var event, data string
	for sc.Scan() {
		line := sc.Text()
		if v, ok := strings.CutPrefix(line, "event: "); ok {
			event = v
		}
		if v, ok := strings.CutPrefix(line, "data: "); ok {
			data = v
			break
		}
	}

	assert.Equal(t, webotp.EventAutofill, event)
	var payload struct {
		Detail map[string]string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal([]byte(data), &payload))
	assert.Equal(t, "123456", payload.Detail["otp"])
}

func TestHub_CloseEndsStreams(t *testing.T) {
	hub := simulator.NewHub(time.Millisecond)
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.Close())
	assert.Zero(t, hub.Clients())
	assert.NoError(t, hub.Dispatch(context.Background(), webotp.Event{Name: "x"}))

	rec := httptest.NewRecorder()
	hub.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type flakyPublisher struct {
	mu    sync.Mutex
	fails int
	calls int
	last  messaging.Message
	topic string
}

func (f *flakyPublisher) Publish(_ context.Context, topic string, msg messaging.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.fails {
		return errors.New("broker unavailable")
	}
	f.topic, f.last = topic, msg
	return nil
}

type staticID string

func (s staticID) Generate() string { return string(s) }

func TestPublisher_Dispatch(t *testing.T) {
	fp := &flakyPublisher{fails: 2}
	p := simulator.NewPublisher(fp, "webotp.events", staticID("evt-1"), 3, time.Millisecond)

	err := p.Dispatch(context.Background(), webotp.Event{Name: webotp.EventAutofill, OTP: "654321", At: at})
	require.NoError(t, err)
	assert.Equal(t, 3, fp.calls)
	assert.Equal(t, "webotp.events", fp.topic)
	assert.Equal(t, []byte("evt-1"), fp.last.Key)
	assert.Equal(t, webotp.EventAutofill, fp.last.Headers[simulator.HeaderEvent])
	assert.NotContains(t, fp.last.Headers, simulator.HeaderSignature)

	var payload simulator.EventPayload
	require.NoError(t, json.Unmarshal(fp.last.Body, &payload))
	assert.Equal(t, simulator.EventPayload{ID: "evt-1", Name: webotp.EventAutofill, Detail: map[string]string{"otp": "654321"}, At: at}, payload)
}

func TestPublisher_Signs(t *testing.T) {
	fp := &flakyPublisher{}
	signer := hash.NewHMACSHA256("s3cret")
	p := simulator.NewPublisher(fp, "t", staticID("evt-2"), 0, time.Millisecond, simulator.SignWith(signer))

	require.NoError(t, p.Dispatch(context.Background(), webotp.Event{Name: webotp.EventAutofill, OTP: "111222", At: at}))
	sig := fp.last.Headers[simulator.HeaderSignature]
	assert.True(t, signer.Verify(sig, fp.last.Body))
	assert.False(t, hash.NewHMACSHA256("other").Verify(sig, fp.last.Body))
}

func TestPublisher_GivesUp(t *testing.T) {
	fp := &flakyPublisher{fails: 10}
	p := simulator.NewPublisher(fp, "t", nil, 1, time.Millisecond)

	err := p.Dispatch(context.Background(), webotp.Event{Name: "x", OTP: "1"})
	require.EqualError(t, err, "broker unavailable")
	assert.Equal(t, 2, fp.calls)
}

func TestFanout_Dispatch(t *testing.T) {
	var got []string
	ok := webotp.DispatcherFunc(func(_ context.Context, evt webotp.Event) error {
		got = append(got, "ok:"+evt.OTP)
		return nil
	})
	bad := webotp.DispatcherFunc(func(context.Context, webotp.Event) error {
		got = append(got, "bad")
		return errors.New("down")
	})

	f := simulator.NewFanout(bad, nil, ok)
	assert.Len(t, f, 2)

	err := f.Dispatch(context.Background(), webotp.Event{OTP: "9"})
	assert.EqualError(t, err, "down")
	assert.Equal(t, []string{"bad", "ok:9"}, got)
}

func TestInbox_DeliversFromBroker(t *testing.T) {
	broker := messaging.NewMemory()
	t.Cleanup(func() { _ = broker.Close() })

	p := newPlatform(simulator.PlatformConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- simulator.NewInbox(broker, "webotp.sms", p).Run(ctx) }()
	require.Eventually(t, func() bool { return broker.Subscribers("webotp.sms") == 1 }, time.Second, 5*time.Millisecond)

	ch := request(context.Background(), p)
	waitPending(t, p, 1)

	pub := func(body string) {
		require.NoError(t, broker.Publish(context.Background(), "webotp.sms", messaging.Message{Body: []byte(body)}))
	}
	pub("no binding here")
	pub("@evil.com #000000")
	pub("Your code is 246810\n\n@example.com #246810")

	assert.Equal(t, "246810", recv(t, ch).cred.Code)

	cancel()
	assert.NoError(t, <-done)
}

func TestGenerator(t *testing.T) {
	totp := fakeTOTP{code: "135790"}

	g, err := simulator.NewGenerator(totp, "", "example.com", clock.Fixed(at))
	require.NoError(t, err)

	msg, text, err := g.Generate("", "pay.example")
	require.NoError(t, err)
	assert.Equal(t, "example.com", msg.Origin)
	assert.Equal(t, "pay.example", msg.Embedded)
	assert.Equal(t, "Your verification code is 135790.\n\n@example.com #135790 @pay.example", text)
	assert.True(t, g.Verify("135790"))
	assert.False(t, g.Verify("000000"))
}

type fakeTOTP struct{ code string }

func (f fakeTOTP) Generate(string) (string, string, error) { return "SECRET", "otpauth://", nil }
func (f fakeTOTP) GenerateCode(string, time.Time) (string, error) {
	return f.code, nil
}
func (f fakeTOTP) Validate(code, secret string, _ time.Time) bool {
	return code == f.code && secret == "SECRET"
}
