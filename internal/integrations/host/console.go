package host

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Console is a line-oriented host for the non-interactive subcommands.
// Hardware barcode scanners type the code followed by Enter, so a scanned
// line on the input is a real scan.
type Console struct {
	in  *bufio.Reader
	out io.Writer

	initData map[string]any

	mu          sync.Mutex
	button      MainButtonParams
	onClick     func(ctx context.Context)
	buttonShown bool
	closed      bool
}

func NewConsole(in io.Reader, out io.Writer, initData map[string]any) *Console {
	if initData == nil {
		initData = map[string]any{}
	}
	return &Console{
		in:       bufio.NewReader(in),
		out:      out,
		initData: initData,
	}
}

// Ready is a no-op: a console has nothing to reveal.
func (c *Console) Ready() {}

func (c *Console) InitData() map[string]any {
	out := make(map[string]any, len(c.initData))
	for k, v := range c.initData {
		out[k] = v
	}
	return out
}

func (c *Console) SetMainButton(params MainButtonParams, onClick func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.button = params
	c.onClick = onClick
}

func (c *Console) ShowMainButton() {
	c.mu.Lock()
	c.buttonShown = true
	c.mu.Unlock()
}

// PressMainButton runs the bound click handler, if the button is visible.
func (c *Console) PressMainButton(ctx context.Context) bool {
	c.mu.Lock()
	onClick, shown := c.onClick, c.buttonShown
	c.mu.Unlock()
	if !shown || onClick == nil {
		return false
	}
	onClick(ctx)
	return true
}

func (c *Console) MainButton() MainButtonParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.button
}

// ScanQR reads one line. An empty line, "cancel" or end of input cancels.
func (c *Console) ScanQR(ctx context.Context, prompt string) (ScanResult, error) {
	line, ok, err := c.ReadLine(ctx, prompt+": ")
	if err != nil {
		return ScanResult{}, err
	}
	line = strings.TrimSpace(line)
	if !ok || line == "" || strings.EqualFold(line, "cancel") {
		return Cancelled(), nil
	}
	return Scanned(line), nil
}

func (c *Console) ShowAlert(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(c.out, "! %s\n", message)
	return err
}

func (c *Console) ShowPopup(ctx context.Context, popup Popup) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if popup.Title != "" {
		if _, err := fmt.Fprintf(c.out, "[%s] ", popup.Title); err != nil {
			return err
		}
	}
	labels := make([]string, 0, len(popup.Buttons))
	for _, b := range popup.Buttons {
		labels = append(labels, b.Text)
	}
	_, err := fmt.Fprintf(c.out, "%s [%s]\n", popup.Message, strings.Join(labels, "/"))
	return err
}

func (c *Console) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *Console) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// ReadLine prints prompt and reads a line. ok is false at end of input.
func (c *Console) ReadLine(ctx context.Context, prompt string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if prompt != "" {
		if _, err := io.WriteString(c.out, prompt); err != nil {
			return "", false, err
		}
	}
	line, err := c.in.ReadString('\n')
	if errors.Is(err, io.EOF) {
		if line == "" {
			return "", false, nil
		}
		return strings.TrimRight(line, "\r\n"), true, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), true, nil
}
