package sh

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/atx.go/pkg/atx"
	"github.com/robotalks/atx.go/pkg/client"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell  *ishell.Shell
	Config *Config
	Client *client.Client

	// Open connects the Client on first use.
	Open func(*Config) (*client.Client, io.Closer, error)

	closer io.Closer
}

const shellKey = "$shell"

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&SendCmd,
		&ListCmd,
		kindCmd(atx.Reset, "reset", "r"),
		kindCmd(atx.PowerShort, "power", "p"),
		kindCmd(atx.PowerLong, "power-long", "pl"),
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// New creates a new shell.
func New(conf *Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
		Open:   openSerial,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(conf.Device + " > ")
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

func openSerial(conf *Config) (*client.Client, io.Closer, error) {
	return client.Open(conf.Device, conf.Durations())
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Connect opens the link to the bridge if not yet.
func (s *Shell) Connect() (*client.Client, error) {
	if s.Client != nil {
		return s.Client, nil
	}
	cli, closer, err := s.Open(s.Config)
	if err != nil {
		return nil, err
	}
	s.Client, s.closer = cli, closer
	return cli, nil
}

// Close closes the link.
func (s *Shell) Close() {
	if s.closer != nil {
		s.closer.Close()
	}
	s.Client, s.closer = nil, nil
}

// Send sends the commands in order, stopping at the first failure.
func (s *Shell) Send(c *ishell.Context, codes ...atx.Code) error {
	cli, err := s.Connect()
	if err != nil {
		c.Err(err)
		return err
	}
	for _, code := range codes {
		if err := cli.Send(code); err != nil {
			c.Err(err)
			return err
		}
		if s.OutputJSON {
			out, _ := json.Marshal(map[string]string{"sent": code.String()})
			c.Println(string(out))
		} else {
			c.Println(code.String(), "OK")
		}
	}
	return nil
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	defer s.Close()
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

func parseTargets(args []string) ([]atx.Target, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("target expected, 1..%d", atx.NumTargets)
	}
	targets := make([]atx.Target, 0, len(args))
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		target := atx.Target(n)
		if err != nil || !target.IsValid() {
			return nil, fmt.Errorf("invalid target %q, 1..%d", arg, atx.NumTargets)
		}
		targets = append(targets, target)
	}
	return targets, nil
}

func kindCmd(kind atx.Kind, name, alias string) *ishell.Cmd {
	return &ishell.Cmd{
		Name:    name,
		Aliases: []string{alias},
		Help:    "TARGET... " + kind.String(),
		Func: func(c *ishell.Context) {
			targets, err := parseTargets(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			codes := make([]atx.Code, len(targets))
			for n, target := range targets {
				codes[n] = atx.CodeOf(target, kind)
			}
			ShellFrom(c).Send(c, codes...)
		},
	}
}

var (
	// SendCmd sends raw command tags.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "TAG... e.g. S1RS",
		Func: func(c *ishell.Context) {
			if len(c.Args) == 0 {
				c.Err(fmt.Errorf("tag expected"))
				return
			}
			codes := make([]atx.Code, len(c.Args))
			for n, arg := range c.Args {
				code, err := atx.ParseTag(arg)
				if err != nil {
					c.Err(err)
					return
				}
				codes[n] = code
			}
			ShellFrom(c).Send(c, codes...)
		},
	}

	// ListCmd lists known commands.
	ListCmd = ishell.Cmd{
		Name:    "list",
		Aliases: []string{"l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			durations := s.Config.Durations()
			table := atx.NewTable(atx.DefaultLayout, durations)
			if s.OutputJSON {
				type item struct {
					Tag      string `json:"tag"`
					Target   int    `json:"target"`
					Action   string `json:"action"`
					Duration string `json:"duration"`
				}
				var items []item
				for _, a := range table.Actions() {
					items = append(items, item{a.Code.String(), int(a.Target), a.Kind.String(), a.Duration.String()})
				}
				out, err := json.Marshal(items)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			for _, a := range table.Actions() {
				c.Printf("%v  target %d %-11s %v\n", a.Code, a.Target, a.Kind, a.Duration)
			}
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(NewConfig()).Run(flag.Args()...)
}
