package host

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInitData(t *testing.T) {
	raw := "query_id=AAHdF6IQ&user=%7B%22id%22%3A279058397%2C%22first_name%22%3A%22Vlad%22%7D&auth_date=1662771648&hash=c501b71e"

	got, err := ParseInitData(raw)
	require.NoError(t, err)

	assert.Equal(t, "AAHdF6IQ", got["query_id"])
	assert.Equal(t, "1662771648", got["auth_date"])
	assert.Equal(t, "c501b71e", got["hash"])

	user, ok := got["user"].(map[string]any)
	require.True(t, ok, "user should decode to an object, got %T", got["user"])
	assert.Equal(t, "Vlad", user["first_name"])
	assert.Equal(t, float64(279058397), user["id"])
}

func TestParseInitDataEmpty(t *testing.T) {
	got, err := ParseInitData("  ")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseInitDataBadUserJSON(t *testing.T) {
	_, err := ParseInitData("user=%7Bnot-json")
	assert.Error(t, err)
}

func TestConsoleScanQR(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ScanResult
	}{
		{name: "scanned", input: "4600000000017\n", want: Scanned("4600000000017")},
		{name: "scanner with CRLF", input: "123\r\n", want: Scanned("123")},
		{name: "empty line cancels", input: "\n", want: Cancelled()},
		{name: "cancel word", input: "cancel\n", want: Cancelled()},
		{name: "end of input", input: "", want: Cancelled()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			c := NewConsole(strings.NewReader(tt.input), &out, nil)
			got, err := c.ScanQR(context.Background(), "Scan the barcode")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Scan the barcode")
		})
	}
}

func TestConsoleScanQRHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewConsole(strings.NewReader("123\n"), &bytes.Buffer{}, nil)
	_, err := c.ScanQR(ctx, "Scan")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConsoleMainButton(t *testing.T) {
	c := NewConsole(strings.NewReader(""), &bytes.Buffer{}, nil)
	clicks := 0
	c.SetMainButton(MainButtonParams{Text: "Save", Color: "#007BFF", TextColor: "#FFFFFF"}, func(context.Context) {
		clicks++
	})

	assert.False(t, c.PressMainButton(context.Background()), "hidden button must not fire")
	c.ShowMainButton()
	assert.True(t, c.PressMainButton(context.Background()))
	assert.Equal(t, 1, clicks)
	assert.Equal(t, "Save", c.MainButton().Text)
}

func TestConsoleAlertPopupAndClose(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader(""), &out, map[string]any{"hash": "abc"})

	require.NoError(t, c.ShowAlert(context.Background(), "Saved"))
	require.NoError(t, c.ShowPopup(context.Background(), Popup{
		Message: "You forgot to save!",
		Buttons: []PopupButton{{Type: "ok", Text: "OK"}},
	}))
	c.Close()

	assert.Contains(t, out.String(), "! Saved")
	assert.Contains(t, out.String(), "You forgot to save! [OK]")
	assert.True(t, c.Closed())

	data := c.InitData()
	data["hash"] = "changed"
	assert.Equal(t, "abc", c.InitData()["hash"], "InitData must return a copy")
}
