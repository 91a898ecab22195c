package emailsvc

import (
	"encoding/json"
	"net/mail"
	"strings"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/aula/core"
)

var testConf = &core.Config{AppName: "Aula", Server: core.ServerConfig{Host: "localhost"}}

type recordingLogger struct {
	errors []string
}

func (l *recordingLogger) Debug(string, ...interface{})       {}
func (l *recordingLogger) Info(string, ...interface{})        {}
func (l *recordingLogger) Warn(string, ...interface{})        {}
func (l *recordingLogger) Error(msg string, _ ...interface{}) { l.errors = append(l.errors, msg) }
func (l *recordingLogger) Fatal(string, ...interface{})       {}

func newMessage() *core.EmailMessage {
	return &core.EmailMessage{
		To:      []mail.Address{{Name: "Ada", Address: "ada@test.cd"}},
		Subject: "Math: Fractions graded",
		BodyStr: "85/100",
	}
}

func TestConsoleServiceMock_SendMessages(t *testing.T) {
	svc := NewConsoleServiceMock(testConf)

	svc.SendMessages(newMessage(), &core.EmailMessage{Subject: "no recipient", BodyStr: "lost"})

	sent := svc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Math: Fractions graded", sent[0].Subject)

	svc.Reset()
	assert.Empty(t, svc.SentMessages())
}

func Test_consoleService_render(t *testing.T) {
	svc := consoleService{defaultFromEmail: mail.Address{Name: "Aula", Address: "noreply@localhost"}, subjPrefix: "[Aula] "}

	body := svc.render(*newMessage())

	assert.True(t, strings.Contains(body, "Subject: [Aula] Math: Fractions graded\r\n"))
	assert.True(t, strings.Contains(body, `To: "Ada" <ada@test.cd>`))
	assert.False(t, strings.Contains(body, "CC:"))
	assert.True(t, strings.HasSuffix(body, "85/100\r\n"))
}

func Test_sendgridService_send(t *testing.T) {
	defer func(orig func(rest.Request) (*rest.Response, error)) { sendgridAPIFunc = orig }(sendgridAPIFunc)

	logger := new(recordingLogger)
	svc := NewSendgridService(testConf, logger).(*sendgridService)

	var got rest.Request
	tests := []struct {
		name       string
		statusCode int
		wantErrs   int
	}{
		{name: "accepted", statusCode: 202},
		{name: "rejected", statusCode: 400, wantErrs: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger.errors = nil
			sendgridAPIFunc = func(req rest.Request) (*rest.Response, error) {
				got = req
				return &rest.Response{StatusCode: tt.statusCode}, nil
			}

			svc.send(*newMessage())

			assert.Len(t, logger.errors, tt.wantErrs)
			assert.Equal(t, rest.Post, got.Method)

			var payload struct {
				Personalizations []struct {
					Subject string `json:"subject"`
				} `json:"personalizations"`
				Content []struct {
					Value string `json:"value"`
				} `json:"content"`
			}
			require.NoError(t, json.Unmarshal(got.Body, &payload))
			assert.Equal(t, "[Aula] Math: Fractions graded", payload.Personalizations[0].Subject)
			assert.Equal(t, "85/100", payload.Content[0].Value)
		})
	}
}
