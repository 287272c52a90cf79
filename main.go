package xhreq

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/HexmosTech/xhreq/exchange"
	"github.com/HexmosTech/xhreq/flags"
	"github.com/HexmosTech/xhreq/input"
	"github.com/HexmosTech/xhreq/output"
	"github.com/HexmosTech/xhreq/version"
	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/pkg/errors"
)

type Options struct {
	// Transport overrides the round tripper used for the exchange.
	Transport http.RoundTripper
}

func Main(options *Options) error {
	args, usage, optionSet, err := flags.Parse(os.Args)
	if err != nil {
		return err
	}
	if optionSet.PrintVersion {
		fmt.Printf("xhreq %s\n", version.Current())
		return nil
	}
	if optionSet.PrintLicenses {
		version.PrintLicenses(os.Stdout)
		return nil
	}

	log.SetHandler(cli.New(os.Stderr))
	if optionSet.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	// Parse positional arguments
	descriptor, err := input.ParseArgs(args, os.Stdin, &optionSet.InputOptions)
	if _, ok := errors.Cause(err).(*input.UsageError); ok {
		usage(os.Stderr)
		return err
	}
	if err != nil {
		return err
	}

	exchangeOptions := optionSet.ExchangeOptions
	exchangeOptions.Transport = options.Transport
	outputOptions := &optionSet.OutputOptions

	// Ctrl-C aborts the request
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	writer := bufio.NewWriter(os.Stdout)
	defer writer.Flush()
	printer := output.NewPrinter(writer, outputOptions)

	if err := printRequest(printer, descriptor, outputOptions); err != nil {
		return err
	}
	writer.Flush()

	// Send request and receive response
	dispatcher := exchange.NewDispatcher(ctx, &exchangeOptions)
	resp, err := dispatcher.Dispatch(descriptor).Await(context.Background())
	if err != nil {
		if exchange.KindOf(err) == exchange.HTTPStatusError {
			printer.PrintError(err)
		}
		return err
	}

	if outputOptions.Download {
		target, err := exchange.BuildURL(descriptor)
		if err != nil {
			return err
		}
		fileWriter := output.NewFileWriter(target, outputOptions)
		return fileWriter.Download(resp.Value, os.Stderr)
	}

	if outputOptions.PrintResponseHeader {
		if err := printer.PrintStatusLine(resp.Status); err != nil {
			return err
		}
		if err := printer.PrintHeader(resp.Header); err != nil {
			return err
		}
	}
	if outputOptions.PrintResponseBody {
		if err := printer.PrintBody(resp.Value, resp.Header.Get("Content-Type")); err != nil {
			return err
		}
	}
	return nil
}

func printRequest(printer output.Printer, descriptor *input.Descriptor, options *output.Options) error {
	opts := input.Merge(input.Defaults(), *descriptor)
	if options.PrintRequestHeader {
		target, err := exchange.BuildURL(&opts)
		if err != nil {
			return err
		}
		if err := printer.PrintRequestLine(opts.Method, target); err != nil {
			return err
		}
		header := make(http.Header)
		for _, field := range opts.Header {
			value, err := exchange.FieldValue(field.Value)
			if err != nil {
				return errors.Wrapf(err, "header '%s'", field.Name)
			}
			header.Add(field.Name, value)
		}
		if err := printer.PrintHeader(header); err != nil {
			return err
		}
	}
	if options.PrintRequestBody {
		switch {
		case opts.Form != nil:
			if err := printer.PrintBody(opts.Form, "application/json"); err != nil {
				return err
			}
		case opts.MultipartData != nil:
			if err := printer.PrintBody(opts.MultipartData, "application/json"); err != nil {
				return err
			}
		case opts.Body != nil:
			if err := printer.PrintBody(opts.Body, ""); err != nil {
				return err
			}
		}
	}
	return nil
}
