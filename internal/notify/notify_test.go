// AngelaMos | 2026
// notify_test.go

package notify

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (s *recordingSender) Send(_ context.Context, to, _, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, to)
	return s.err
}

func TestDispatcherDeliversInBackground(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender)

	d.Dispatch(context.Background(), "a@example.com", "hi", "body")
	d.Dispatch(context.Background(), "b@example.com", "hi", "body")
	d.Wait()

	if len(sender.sent) != 2 {
		t.Fatalf("sent = %v, want two messages", sender.sent)
	}
}

func TestDispatcherSwallowsFailures(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	d := NewDispatcher(sender)

	d.Dispatch(context.Background(), "a@example.com", "hi", "body")
	d.Wait()

	if len(sender.sent) != 1 {
		t.Fatalf("send attempted %d times, want 1", len(sender.sent))
	}
}

func TestDispatcherIgnoresCallerCancellation(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender)

	ctx, cancel := context.WithCancel(context.Background())
	d.Dispatch(ctx, "a@example.com", "hi", "body")
	cancel()
	d.Wait()

	if len(sender.sent) != 1 {
		t.Fatalf("send attempted %d times, want 1", len(sender.sent))
	}
}

func TestSMTPSenderRejectsHeaderInjection(t *testing.T) {
	s := &SMTPSender{host: "localhost", port: 25, from: "club@example.com"}

	err := s.Send(context.Background(), "a@example.com\r\nBcc: x@example.com", "hi", "body")
	if err == nil {
		t.Fatal("expected header injection to be rejected")
	}
}

func listen(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })
	return ln
}

// silentServer accepts one connection and never answers it.
func silentServer(t *testing.T, ln net.Listener) {
	t.Helper()
	conns := make(chan net.Conn, 1)
	go func() {
		if conn, err := ln.Accept(); err == nil {
			conns <- conn
		}
	}()
	t.Cleanup(func() {
		select {
		case conn := <-conns:
			_ = conn.Close()
		default:
		}
	})
}

func senderFor(ln net.Listener) *SMTPSender {
	addr := ln.Addr().(*net.TCPAddr)
	return &SMTPSender{host: "127.0.0.1", port: addr.Port, from: "club@example.com"}
}

// serveSMTP answers one session with canned replies and returns the DATA
// payload on the channel.
func serveSMTP(ln net.Listener) <-chan string {
	data := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		reply := func(line string) { _, _ = conn.Write([]byte(line + "\r\n")) }
		reply("220 mail.test ESMTP")

		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			switch verb := strings.ToUpper(strings.Fields(line + " x")[0]); verb {
			case "EHLO", "HELO":
				reply("250 mail.test")
			case "DATA":
				reply("354 go ahead")
				var body strings.Builder
				for {
					l, err := r.ReadString('\n')
					if err != nil {
						return
					}
					if l == ".\r\n" {
						break
					}
					body.WriteString(l)
				}
				data <- body.String()
				reply("250 queued")
			case "QUIT":
				reply("221 bye")
				return
			default:
				reply("250 ok")
			}
		}
	}()
	return data
}

func TestSMTPSenderDelivers(t *testing.T) {
	ln := listen(t)
	data := serveSMTP(ln)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := senderFor(ln).Send(ctx, "ana@example.com", "Password reset", "open the link"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	select {
	case got := <-data:
		for _, want := range []string{"To: ana@example.com", "Subject: Password reset", "open the link"} {
			if !strings.Contains(got, want) {
				t.Errorf("message missing %q:\n%s", want, got)
			}
		}
	case <-time.After(time.Second):
		t.Fatal("server never received DATA")
	}
}

func TestSMTPSenderStopsAtDeadline(t *testing.T) {
	ln := listen(t)
	silentServer(t, ln)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := senderFor(ln).Send(ctx, "ana@example.com", "hi", "body")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Send() error = %v, want DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Send() returned after %s", elapsed)
	}
}

func TestDispatcherWaitReturnsWhenServerHangs(t *testing.T) {
	ln := listen(t)
	silentServer(t, ln)

	d := NewDispatcher(senderFor(ln))
	d.timeout = 100 * time.Millisecond
	d.Dispatch(context.Background(), "ana@example.com", "hi", "body")

	done := make(chan struct{})
	go func() {
		d.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() still blocked on a silent server")
	}
}
