package ctl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"swaybard/internal/layout"
)

func TestParseChangeLayoutManualAndSpiral(t *testing.T) {
	cmd, err := ParseCommand("change-layout manual")
	require.NoError(t, err)
	require.Equal(t, ChangeLayout{Mode: layout.ManualMode()}, cmd)

	cmd, err = ParseCommand("change-layout spiral\n")
	require.NoError(t, err)
	require.Equal(t, ChangeLayout{Mode: layout.SpiralMode()}, cmd)
}

func TestParseChangeLayoutStackMainDefaults(t *testing.T) {
	cmd, err := ParseCommand("change-layout stack-main")
	require.NoError(t, err)
	require.Equal(t, ChangeLayout{Mode: layout.StackMainMode(DefaultStackMainSize, DefaultStackLayout)}, cmd)
}

func TestParseChangeLayoutStackMainFlags(t *testing.T) {
	cmd, err := ParseCommand("change-layout stack-main --size 60 --stack-layout tabbed")
	require.NoError(t, err)
	require.Equal(t, ChangeLayout{Mode: layout.StackMainMode(60, layout.StackTabbed)}, cmd)
}

func TestParseChangeLayoutRejectsBogusLayout(t *testing.T) {
	_, err := ParseCommand("change-layout bogus")
	require.Error(t, err)
	require.Equal(t, "unrecognized layout", err.Error())
}

func TestParseChangeLayoutFlagErrors(t *testing.T) {
	cases := []struct {
		line string
		want string
	}{
		{"change-layout", "change-layout requires a layout name"},
		{"change-layout stack-main --size", "--size requires a value"},
		{"change-layout stack-main --size much", `invalid --size "much"`},
		{"change-layout stack-main --size 140", "--size 140 out of range 0..100"},
		{"change-layout stack-main --stack-layout", "--stack-layout requires a value"},
		{"change-layout stack-main --stack-layout cascade", `unrecognized stack layout "cascade"`},
		{"change-layout stack-main --wat", `unknown flag "--wat"`},
	}
	for _, tc := range cases {
		_, err := ParseCommand(tc.line)
		require.Error(t, err, tc.line)
		require.Equal(t, tc.want, err.Error(), tc.line)
	}
}

func TestParseStackCommands(t *testing.T) {
	cases := map[string]Command{
		"stack-focus-next":       StackFocusNext{},
		"stack-focus-prev":       StackFocusPrev{},
		"stack-swap-main":        StackSwapMain{},
		"stack-main-rotate-next": StackMainRotateNext{},
		"stack-main-rotate-prev": StackMainRotatePrev{},
		"ping":                   Ping{},
	}
	for line, want := range cases {
		cmd, err := ParseCommand(line)
		require.NoError(t, err, line)
		require.Equal(t, want, cmd, line)
	}
}

func TestParseRejectsTrailingArguments(t *testing.T) {
	_, err := ParseCommand("stack-swap-main now")
	require.Error(t, err)
	require.Contains(t, err.Error(), "takes no arguments")
}

func TestParseRejectsEmptyAndUnknown(t *testing.T) {
	_, err := ParseCommand("   \n")
	require.Error(t, err)

	_, err = ParseCommand("do-a-barrel-roll")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown command")
}

func TestReplyRoundTrip(t *testing.T) {
	require.Equal(t, "OK", FormatReply(nil))
	require.NoError(t, ParseReply("OK\n"))

	formatted := FormatReply(errors.New("not stack-main"))
	require.Equal(t, "ERROR: not stack-main", formatted)
	err := ParseReply(formatted)
	require.Error(t, err)
	require.Equal(t, "not stack-main", err.Error())
}

func TestFormatReplyCollapsesNewlines(t *testing.T) {
	require.Equal(t, "ERROR: one two", FormatReply(errors.New("one\ntwo")))
}

func TestParseReplyMalformed(t *testing.T) {
	err := ParseReply("success")
	require.Error(t, err)
	require.Contains(t, err.Error(), "malformed reply")
}
