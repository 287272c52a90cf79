package flags

import (
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/HexmosTech/xhreq/exchange"
	"github.com/HexmosTech/xhreq/input"
	"github.com/HexmosTech/xhreq/output"
	"github.com/mattn/go-isatty"
	"github.com/pborman/getopt"
	"github.com/pkg/errors"
)

var reNumber = regexp.MustCompile(`^[0-9.]+$`)

type OptionSet struct {
	InputOptions    input.Options
	ExchangeOptions exchange.Options
	OutputOptions   output.Options

	Verbose       bool
	PrintVersion  bool
	PrintLicenses bool
}

type terminalInfo struct {
	stdinIsTerminal  bool
	stdoutIsTerminal bool
}

// Parse parses the command line. It returns the positional arguments and a
// function printing the usage.
func Parse(args []string) ([]string, func(io.Writer), *OptionSet, error) {
	return parse(args, terminalInfo{
		stdinIsTerminal:  isatty.IsTerminal(os.Stdin.Fd()),
		stdoutIsTerminal: isatty.IsTerminal(os.Stdout.Fd()),
	})
}

func parse(args []string, terminal terminalInfo) ([]string, func(io.Writer), *OptionSet, error) {
	inputOptions := input.Options{}
	exchangeOptions := exchange.Options{}
	outputOptions := output.Options{}
	optionSet := &OptionSet{}
	var ignoreStdin bool
	printFlag := "\000" // "\000" is a special value that indicates user did not specified --print
	timeout := "30s"
	verify := "yes"
	auth := ""

	flagSet := getopt.New()
	flagSet.SetProgram("xhreq")
	flagSet.SetParameters("[METHOD] URL [REQUEST_ITEM [REQUEST_ITEM ...]]")
	flagSet.BoolVarLong(&inputOptions.Multipart, "multipart", 'm', "send key=value items as multipart/form-data")
	flagSet.BoolVarLong(&inputOptions.JSON, "json", 'j', "parse the response as JSON")
	flagSet.StringVarLong(&inputOptions.ResponseType, "response-type", 0, "response type (text, json, arraybuffer, blob, document)")
	flagSet.StringVarLong(&inputOptions.BaseURL, "base-url", 'b', "prefix prepended to URL")
	flagSet.StringVarLong(&printFlag, "print", 'p', "specifies what the output should contain (HBhb)")
	flagSet.BoolVarLong(&ignoreStdin, "ignore-stdin", 0, "do not attempt to read stdin")
	flagSet.StringVarLong(&timeout, "timeout", 0, "Timeout seconds that you allow the whole operation to take")
	flagSet.BoolVarLong(&exchangeOptions.FollowRedirects, "follow", 'F', "follow redirects")
	flagSet.StringVarLong(&verify, "verify", 0, "verify Host SSL certificate, 'yes' or 'no' ('yes' by default)")
	flagSet.BoolVarLong(&exchangeOptions.ForceHTTP1, "http1", 0, "force HTTP/1.1 protocol")
	flagSet.StringVarLong(&auth, "auth", 'a', "colon-separated username and password for authentication")
	flagSet.BoolVarLong(&optionSet.Verbose, "verbose", 'v', "log the dispatch to stderr")
	flagSet.BoolVarLong(&outputOptions.Download, "download", 'd', "download the response body to a file")
	flagSet.StringVarLong(&outputOptions.OutputFile, "output", 'o', "save the downloaded body in this file")
	flagSet.BoolVarLong(&outputOptions.Overwrite, "overwrite", 0, "overwrite an existing output file")
	flagSet.BoolVarLong(&optionSet.PrintVersion, "version", 0, "print version and exit")
	flagSet.BoolVarLong(&optionSet.PrintLicenses, "licenses", 0, "print licenses and exit")
	if err := flagSet.Getopt(args, nil); err != nil {
		return nil, flagSet.PrintUsage, nil, err
	}

	// Check stdin
	if !ignoreStdin && !terminal.stdinIsTerminal {
		inputOptions.ReadStdin = true
	}

	// Parse --print
	if err := parsePrintFlag(printFlag, terminal.stdoutIsTerminal, &outputOptions); err != nil {
		return nil, flagSet.PrintUsage, nil, err
	}

	// Parse --timeout
	d, err := parseDurationOrSeconds(timeout)
	if err != nil {
		return nil, flagSet.PrintUsage, nil, err
	}
	exchangeOptions.Timeout = d

	// Parse --verify
	switch strings.ToLower(verify) {
	case "yes", "true":
		exchangeOptions.SkipVerify = false
	case "no", "false":
		exchangeOptions.SkipVerify = true
	default:
		return nil, flagSet.PrintUsage, nil, errors.Errorf("%s is not a valid value for --verify (must be 'yes' or 'no')", verify)
	}

	// Parse --auth
	if auth != "" {
		authOptions, err := parseAuth(auth)
		if err != nil {
			return nil, flagSet.PrintUsage, nil, err
		}
		exchangeOptions.Auth = authOptions
	}

	// A download wants the raw bytes
	if outputOptions.Download && inputOptions.ResponseType == "" && !inputOptions.JSON {
		inputOptions.ResponseType = string(exchange.ResponseTypeArrayBuffer)
	}

	// Color
	outputOptions.EnableColor = terminal.stdoutIsTerminal
	outputOptions.EnableFormat = terminal.stdoutIsTerminal

	optionSet.InputOptions = inputOptions
	optionSet.ExchangeOptions = exchangeOptions
	optionSet.OutputOptions = outputOptions
	return flagSet.Args(), flagSet.PrintUsage, optionSet, nil
}

func parsePrintFlag(printFlag string, stdoutIsTerminal bool, outputOptions *output.Options) error {
	if printFlag == "\000" {
		// --print is not specified
		if stdoutIsTerminal {
			outputOptions.PrintResponseHeader = true
			outputOptions.PrintResponseBody = true
		} else {
			outputOptions.PrintResponseBody = true
		}
	} else {
		for _, c := range printFlag {
			switch c {
			case 'H':
				outputOptions.PrintRequestHeader = true
			case 'B':
				outputOptions.PrintRequestBody = true
			case 'h':
				outputOptions.PrintResponseHeader = true
			case 'b':
				outputOptions.PrintResponseBody = true
			default:
				return errors.Errorf("Invalid char in --print value (must be consist of HBhb): %c", c)
			}
		}
	}
	return nil
}

func parseDurationOrSeconds(timeout string) (time.Duration, error) {
	if reNumber.MatchString(timeout) {
		timeout += "s"
	}
	d, err := time.ParseDuration(timeout)
	if err != nil {
		return time.Duration(0), errors.Errorf("Value of --timeout must be a number or duration string: %v", timeout)
	}
	return d, nil
}

func parseAuth(authFlag string) (exchange.AuthOptions, error) {
	var username, password string
	colonIndex := strings.Index(authFlag, ":")
	if colonIndex == -1 {
		username = authFlag
		p, err := askPassword()
		if err != nil {
			return exchange.AuthOptions{}, err
		}
		password = p
	} else {
		username = authFlag[:colonIndex]
		password = authFlag[colonIndex+1:]
	}
	return exchange.AuthOptions{
		Enabled:  true,
		UserName: username,
		Password: password,
	}, nil
}
