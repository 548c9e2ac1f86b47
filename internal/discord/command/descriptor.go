package command

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

const (
	maxDescriptionLength = 100
	maxChoices           = 25
)

var namePattern = regexp.MustCompile(`^[-_a-z0-9]{1,32}$`)

type Choice struct {
	Name  string
	Value interface{}
}

type Parameter struct {
	Name        string
	Description string
	Type        discordgo.ApplicationCommandOptionType
	Required    bool
	Choices     []Choice
}

// Descriptor declares one slash command.
type Descriptor struct {
	Name        string
	Description string
	Parameters  []Parameter
	Scope       Scope

	// Permission bits a member needs to see the command, zero for everyone.
	DefaultMemberPermissions int64
}

func (d Descriptor) Validate() error {
	if !namePattern.MatchString(d.Name) {
		return fmt.Errorf("invalid command name [%s]: must match %s", d.Name, namePattern)
	}
	if err := checkDescription(d.Description); err != nil {
		return fmt.Errorf("command [%s]: %w", d.Name, err)
	}

	seen := make(map[string]struct{}, len(d.Parameters))
	optionalSeen := false
	for _, p := range d.Parameters {
		if !namePattern.MatchString(p.Name) {
			return fmt.Errorf("command [%s]: invalid parameter name [%s]", d.Name, p.Name)
		}
		if _, ok := seen[p.Name]; ok {
			return fmt.Errorf("command [%s]: duplicate parameter [%s]", d.Name, p.Name)
		}
		seen[p.Name] = struct{}{}

		if err := checkDescription(p.Description); err != nil {
			return fmt.Errorf("command [%s] parameter [%s]: %w", d.Name, p.Name, err)
		}
		if len(p.Choices) > maxChoices {
			return fmt.Errorf("command [%s] parameter [%s]: more than %d choices", d.Name, p.Name, maxChoices)
		}

		// Discord rejects required options after optional ones
		if p.Required && optionalSeen {
			return fmt.Errorf("command [%s]: required parameter [%s] follows an optional one", d.Name, p.Name)
		}
		optionalSeen = optionalSeen || !p.Required
	}

	return nil
}

// ApplicationCommand converts the descriptor to the payload sent to Discord.
func (d Descriptor) ApplicationCommand() *discordgo.ApplicationCommand {
	cmd := &discordgo.ApplicationCommand{
		Name:        d.Name,
		Type:        discordgo.ChatApplicationCommand,
		Description: d.Description,
	}
	if d.DefaultMemberPermissions != 0 {
		perms := d.DefaultMemberPermissions
		cmd.DefaultMemberPermissions = &perms
	}

	for _, p := range d.Parameters {
		opt := &discordgo.ApplicationCommandOption{
			Name:        p.Name,
			Type:        p.Type,
			Description: p.Description,
			Required:    p.Required,
		}
		for _, c := range p.Choices {
			opt.Choices = append(opt.Choices, &discordgo.ApplicationCommandOptionChoice{
				Name:  c.Name,
				Value: c.Value,
			})
		}
		cmd.Options = append(cmd.Options, opt)
	}

	return cmd
}

// ApplicationCommands converts descriptors in order. The result is never nil so an
// empty catalog is sent as an empty list rather than null.
func ApplicationCommands(descs []Descriptor) []*discordgo.ApplicationCommand {
	cmds := make([]*discordgo.ApplicationCommand, 0, len(descs))
	for _, d := range descs {
		cmds = append(cmds, d.ApplicationCommand())
	}
	return cmds
}

func checkDescription(desc string) error {
	n := utf8.RuneCountInString(desc)
	if n == 0 {
		return fmt.Errorf("missing description")
	} else if n > maxDescriptionLength {
		return fmt.Errorf("description longer than %d characters", maxDescriptionLength)
	}
	return nil
}
