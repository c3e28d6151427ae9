package stdout

import (
	"context"
	"fmt"
	"io"
	"os"

	"retag/internal/parser"
	"retag/internal/publishers"
)

// Out is where the payload is printed.
var Out io.Writer = os.Stdout

type Publisher struct{}

func (p *Publisher) Publish(_ context.Context, records []*parser.Record, config map[string]interface{}) error {
	payload, err := publishers.GenerateSubscriptionPayload(records, config)
	if err != nil {
		return err
	}

	if raw, _ := config["raw"].(bool); raw {
		_, err = fmt.Fprintln(Out, payload)
		return err
	}
	fmt.Fprintln(Out, "========== RELABELED LINKS ==========")
	fmt.Fprintln(Out, payload)
	fmt.Fprintln(Out, "=====================================")
	return nil
}

func init() {
	publishers.Register("stdout", func() publishers.Publisher { return &Publisher{} })
}
