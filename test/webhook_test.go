package test

import (
	"fmt"
	"net/http"
	"testing"

	"wbs/internal/model"
	"wbs/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wahaMessage(from, body string) map[string]interface{} {
	return map[string]interface{}{
		"event":   "message",
		"session": "default",
		"payload": map[string]interface{}{
			"from":   from,
			"body":   body,
			"fromMe": false,
		},
	}
}

func TestWahaWebhook_Submission(t *testing.T) {
	env := newTestEnv(t)
	from := "628123456789@c.us"

	body := "LAPOR#Dugaan korupsi berupa suap dan gratifikasi pengadaan#Kantor cabang Surabaya#Bulan Juli 2026#Kepala bagian pengadaan#Meminta komisi ilegal dari setiap kontrak yang disetujui"
	var resp map[string]string
	status := env.postJSON(t, "/webhook/waha", "", wahaMessage(from, body), &resp)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", resp["status"])

	// The report landed with the sender as contact and WhatsApp as channel.
	token := env.login(t)
	var list struct {
		Reports []model.Report `json:"reports"`
	}
	status = env.getJSON(t, "/v1/reports", token, &list)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list.Reports, 1)
	report := list.Reports[0]
	assert.Equal(t, model.ChannelWhatsApp, report.SourceChannel)
	assert.Equal(t, model.CategoryCorruption, report.Category)

	// The confirmation with the credentials goes back over WhatsApp.
	intents := env.notifier.sent()
	require.NotEmpty(t, intents)
	confirmation := intents[0]
	assert.Equal(t, notify.ChannelWhatsApp, confirmation.Channel)
	assert.Equal(t, from, confirmation.Recipient)
	assert.Equal(t, notify.TemplateReportConfirmation, confirmation.Template)
	assert.Equal(t, report.ReportID, confirmation.Params["report_id"])
}

func TestWahaWebhook_SubmissionRejected(t *testing.T) {
	env := newTestEnv(t)
	from := "628123456789@c.us"

	t.Run("too few segments", func(t *testing.T) {
		env.notifier.reset()
		status := env.postJSON(t, "/webhook/waha", "", wahaMessage(from, "LAPOR#cuma satu bagian"), nil)
		require.Equal(t, http.StatusOK, status)

		intents := env.notifier.sent()
		require.Len(t, intents, 1)
		assert.Contains(t, intents[0].Params["body"], "Format laporan tidak lengkap")
	})

	t.Run("fails validation", func(t *testing.T) {
		env.notifier.reset()
		status := env.postJSON(t, "/webhook/waha", "",
			wahaMessage(from, "LAPOR#korupsi#sini#tadi#dia#begitu saja terjadi"), nil)
		require.Equal(t, http.StatusOK, status)

		intents := env.notifier.sent()
		require.Len(t, intents, 1)
		assert.Contains(t, intents[0].Params["body"], "Laporan belum dapat diterima")
	})
}

func TestWahaWebhook_StatusCheck(t *testing.T) {
	env := newTestEnv(t)
	reportID, pin := env.submitReport(t)
	from := "628123456789@c.us"

	env.notifier.reset()
	status := env.postJSON(t, "/webhook/waha", "",
		wahaMessage(from, fmt.Sprintf("STATUS %s %s", reportID, pin)), nil)
	require.Equal(t, http.StatusOK, status)

	intents := env.notifier.sent()
	require.Len(t, intents, 1)
	reply := intents[0]
	assert.Equal(t, notify.ChannelWhatsApp, reply.Channel)
	assert.Equal(t, from, reply.Recipient)
	assert.Contains(t, reply.Params["body"], reportID)
	assert.Contains(t, reply.Params["body"], "Disubmit")

	t.Run("wrong pin", func(t *testing.T) {
		env.notifier.reset()
		wrongPIN := "000000"
		if wrongPIN == pin {
			wrongPIN = "000001"
		}
		status := env.postJSON(t, "/webhook/waha", "",
			wahaMessage(from, fmt.Sprintf("STATUS %s %s", reportID, wrongPIN)), nil)
		require.Equal(t, http.StatusOK, status)

		intents := env.notifier.sent()
		require.Len(t, intents, 1)
		assert.Contains(t, intents[0].Params["body"], "Report ID atau PIN tidak valid")
	})
}

func TestWahaWebhook_GuidanceAndIgnores(t *testing.T) {
	env := newTestEnv(t)
	from := "628123456789@c.us"

	// Free text gets the usage guidance.
	status := env.postJSON(t, "/webhook/waha", "", wahaMessage(from, "halo, saya mau lapor"), nil)
	require.Equal(t, http.StatusOK, status)
	intents := env.notifier.sent()
	require.Len(t, intents, 1)
	assert.Contains(t, intents[0].Params["body"], "LAPOR#")

	// Our own outbound messages and non-message events are ignored.
	env.notifier.reset()
	outbound := wahaMessage(from, "halo")
	outbound["payload"].(map[string]interface{})["fromMe"] = true
	var resp map[string]string
	status = env.postJSON(t, "/webhook/waha", "", outbound, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ignored", resp["status"])

	sessionEvent := wahaMessage(from, "halo")
	sessionEvent["event"] = "session.status"
	status = env.postJSON(t, "/webhook/waha", "", sessionEvent, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ignored", resp["status"])

	assert.Empty(t, env.notifier.sent())
}
