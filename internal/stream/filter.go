package stream

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/cel-go/cel"

	errspkg "github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/errors"
	"github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/ledger"
)

// filterEngine decides whether a received transaction is delivered to the
// local subscription. The party/template filter is also forwarded to the
// transport so most exclusion happens server-side; the local pass exists so
// several logically distinct subscriptions can share coarser server filters,
// and to apply the optional CEL predicate.
type filterEngine struct {
	filter ledger.TransactionFilter
	prog   cel.Program
}

func newFilterEngine(filter ledger.TransactionFilter, expression string) (*filterEngine, error) {
	e := &filterEngine{filter: filter}

	expression = strings.TrimSpace(expression)
	if expression == "" {
		return e, nil
	}

	env, err := cel.NewEnv(
		cel.Variable("transaction_id", cel.StringType),
		cel.Variable("command_id", cel.StringType),
		cel.Variable("workflow_id", cel.StringType),
		cel.Variable("offset", cel.IntType),
		cel.Variable("effective_ms", cel.IntType),
		// Events as a list of maps: kind, contract_id, template, witnesses.
		cel.Variable("events", cel.DynType),
		cel.Variable("now_ms", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errspkg.ErrInvalidFilter, err)
	}
	ast, iss := env.Parse(expression)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("%w: %v", errspkg.ErrInvalidFilter, iss.Err())
	}
	checked, iss := env.Check(ast)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("%w: %v", errspkg.ErrInvalidFilter, iss.Err())
	}
	prog, err := env.Program(checked)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errspkg.ErrInvalidFilter, err)
	}
	e.prog = prog
	return e, nil
}

// matches reports whether the transaction should be delivered: at least one
// event must be witnessed by a filtered party whose filter admits it, and the
// CEL predicate, when configured, must evaluate to true.
func (e *filterEngine) matches(tx *ledger.Transaction) bool {
	if !e.partyMatch(tx) {
		return false
	}
	if e.prog == nil {
		return true
	}
	return e.eval(tx)
}

func (e *filterEngine) partyMatch(tx *ledger.Transaction) bool {
	for _, ev := range tx.Events {
		for _, w := range ev.Witnesses {
			if pf, ok := e.filter[w]; ok && pf.Admits(ev) {
				return true
			}
		}
	}
	return false
}

func (e *filterEngine) eval(tx *ledger.Transaction) bool {
	index, _ := tx.Offset.Index()
	events := make([]any, 0, len(tx.Events))
	for _, ev := range tx.Events {
		witnesses := make([]string, 0, len(ev.Witnesses))
		for _, w := range ev.Witnesses {
			witnesses = append(witnesses, string(w))
		}
		events = append(events, map[string]any{
			"kind":        string(ev.Kind),
			"contract_id": ev.ContractID,
			"template":    ev.Template.String(),
			"witnesses":   witnesses,
		})
	}
	out, _, err := e.prog.Eval(map[string]any{
		"transaction_id": tx.ID,
		"command_id":     tx.CommandID,
		"workflow_id":    tx.WorkflowID,
		"offset":         int64(index),
		"effective_ms":   tx.EffectiveAt.UnixMilli(),
		"events":         events,
		"now_ms":         time.Now().UnixMilli(),
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
