package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/reglet-dev/lambda-bridge/application/codec"
	"github.com/reglet-dev/lambda-bridge/application/registry"
	"github.com/reglet-dev/lambda-bridge/domain/entities"
	"github.com/reglet-dev/lambda-bridge/infrastructure/hostobject"
	"github.com/reglet-dev/lambda-bridge/infrastructure/parser"
	"github.com/reglet-dev/lambda-bridge/internal/invocation"
)

// ErrInvocationFailed is returned when the handler raised an exception. The
// exception itself has already been printed.
var ErrInvocationFailed = errors.New("invocation failed")

type invokeOptions struct {
	eventFile   string
	data        string
	contextFile string
	requestID   string
	timeout     time.Duration
}

func newInvokeCommand(root *rootOptions) *cobra.Command {
	opts := &invokeOptions{}

	cmd := &cobra.Command{
		Use:   "invoke <artifact> [handler]",
		Short: "Invoke a handler once",
		Long: `Invoke a handler of a WASM module once and print its result.

The handler defaults to liblambda.handler. The event is read from --data,
from --event (a JSON or YAML file, "-" for stdin) or defaults to null.
Context attributes missing from --context are filled with local defaults.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := registry.DefaultModuleName + "." + registry.DefaultHandlerName
			if len(args) == 2 {
				handler = args[1]
			}
			return runInvoke(cmd, root, opts, args[0], handler)
		},
	}

	cmd.Flags().StringVarP(&opts.eventFile, "event", "e", "", "event file (JSON or YAML, - for stdin)")
	cmd.Flags().StringVarP(&opts.data, "data", "d", "", "inline event (JSON or YAML)")
	cmd.Flags().StringVarP(&opts.contextFile, "context", "c", "", "context fixture file (JSON or YAML)")
	cmd.Flags().StringVar(&opts.requestID, "request-id", "", "aws_request_id (default: random UUID)")
	cmd.Flags().DurationVarP(&opts.timeout, "timeout", "t", 3*time.Second, "invocation budget reported as remaining time")
	return cmd
}

func runInvoke(cmd *cobra.Command, root *rootOptions, opts *invokeOptions, artifact, handler string) error {
	if opts.timeout <= 0 {
		return fmt.Errorf("--timeout must be positive, got %s", opts.timeout)
	}
	p := parser.NewYamlFixtureParser()

	eventData, err := readEvent(cmd.InOrStdin(), opts)
	if err != nil {
		return err
	}
	event, err := p.ParseEvent(eventData)
	if err != nil {
		return err
	}

	fixture := &entities.ContextFixture{}
	if opts.contextFile != "" {
		data, err := os.ReadFile(opts.contextFile)
		if err != nil {
			return fmt.Errorf("failed to read context: %w", err)
		}
		if fixture, err = p.ParseContext(data); err != nil {
			return err
		}
	}

	ctx, cancel := invocation.WithRemaining(cmd.Context(), uint64(opts.timeout.Milliseconds())) //nolint:gosec // G115: checked positive above
	defer cancel()

	snapshot := defaultSnapshot(fixture.ContextSnapshot, artifact, opts.requestID)
	host := hostobject.NewContext(snapshot, remainingSource(ctx, fixture))

	mod, release, err := loadModule(cmd.Context(), artifact)
	if err != nil {
		return err
	}
	defer release()

	name, err := mod.Resolve(handler)
	if err != nil {
		return err
	}

	printer := NewPrinter(cmd.OutOrStdout(), root.output)
	out, err := mod.Invoke(ctx, name, event, host)
	if err != nil {
		var exc *entities.HostException
		if errors.As(err, &exc) {
			if printErr := printer.PrintException(exc); printErr != nil {
				return printErr
			}
			return ErrInvocationFailed
		}
		return err
	}

	body, err := codec.EncodeJSON(out)
	if err != nil {
		return err
	}
	return printer.PrintRaw(body)
}

func readEvent(stdin io.Reader, opts *invokeOptions) ([]byte, error) {
	switch {
	case opts.data != "":
		return []byte(opts.data), nil
	case opts.eventFile == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	case opts.eventFile != "":
		data, err := os.ReadFile(opts.eventFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}
		return data, nil
	default:
		return nil, nil
	}
}

// defaultSnapshot fills the attributes a fixture left empty with values
// derived from the artifact name.
func defaultSnapshot(s entities.ContextSnapshot, artifact, requestID string) entities.ContextSnapshot {
	name := strings.TrimSuffix(filepath.Base(artifact), filepath.Ext(artifact))
	setDefault(&s.FunctionName, name)
	setDefault(&s.FunctionVersion, "$LATEST")
	setDefault(&s.InvokedFunctionARN, "arn:aws:lambda:local:000000000000:function:"+s.FunctionName)
	setDefault(&s.MemoryLimitInMB, "128")
	setDefault(&s.AWSRequestID, requestID)
	setDefault(&s.AWSRequestID, uuid.NewString())
	setDefault(&s.LogGroupName, "/aws/lambda/"+s.FunctionName)
	setDefault(&s.LogStreamName, time.Now().UTC().Format("2006/01/02")+"/[$LATEST]"+strings.ReplaceAll(uuid.NewString(), "-", ""))
	return s
}

func setDefault(field *string, v string) {
	if *field == "" {
		*field = v
	}
}

// remainingSource answers remaining time queries from the fixture when it
// pins a value, otherwise from ctx's deadline.
func remainingSource(ctx context.Context, fixture *entities.ContextFixture) hostobject.Method {
	if fixture.RemainingTimeInMillis != nil {
		return hostobject.FixedRemaining(*fixture.RemainingTimeInMillis)
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return nil
	}
	return hostobject.RemainingFromDeadline(deadline)
}
