package api

import (
	"errors"
	"fmt"
)

// Validator - интерфейс, который могут реализовать DTO
type Validator interface {
	Validate() error
}

var controlCommands = map[string]bool{
	"up":           true,
	"down":         true,
	"strafe_left":  true,
	"strafe_right": true,
	"left":         true,
	"right":        true,
	"turn_left":    true,
	"turn_right":   true,
}

func (p ControlPayload) Validate() error {
	if p.Command == "" {
		return errors.New("command is required")
	}
	if !controlCommands[p.Command] {
		return fmt.Errorf("unknown control command %q", p.Command)
	}
	return nil
}

func (p ActionPayload) Validate() error {
	switch p.Button {
	case "left", "right", "inventory":
		return nil
	case "":
		return errors.New("button is required")
	default:
		return fmt.Errorf("unknown action button %q", p.Button)
	}
}

func (p JoinPayload) Validate() error {
	if len(p.Name) > 64 {
		return errors.New("name too long")
	}
	return nil
}
