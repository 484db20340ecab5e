package telegram

import (
	"testing"

	"github.com/m3rciful/teambot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

func nop(tele.Context) error { return nil }

func TestRegistryCommands(t *testing.T) {
	r := NewRegistry()
	if err := r.RegisterCommand("/join", commands.Command{Handler: nop, Description: "вступить", Aliases: []string{"apply"}}); err != nil {
		t.Fatal(err)
	}
	if err := r.RegisterCommand("/admin", commands.Command{Handler: nop, Description: "админка", AdminOnly: true}); err != nil {
		t.Fatal(err)
	}
	if err := r.RegisterCommand("/join", commands.Command{Handler: nop, Description: "dup"}); err == nil {
		t.Fatal("duplicate accepted")
	}
	if err := r.RegisterCommand("nojoin", commands.Command{Handler: nop, Description: "x"}); err == nil {
		t.Fatal("missing slash accepted")
	}

	menu := r.ListCommands(true)
	if len(menu) != 1 || menu[0].Text != "join" {
		t.Fatalf("menu = %+v", menu)
	}
	if name, _, ok := r.LookupCommand("/apply now"); !ok || name != "/join" {
		t.Fatalf("alias lookup = %q %v", name, ok)
	}
	if _, _, ok := r.LookupCommand("привет"); ok {
		t.Fatal("plain text matched a command")
	}
}

func TestRegistryCallbacks(t *testing.T) {
	r := NewRegistry()
	if err := r.RegisterCallback("show_user", commands.Callback{Handler: nop, AdminOnly: true}); err != nil {
		t.Fatal(err)
	}
	if err := r.RegisterCallback("show_user", commands.Callback{Handler: nop}); err == nil {
		t.Fatal("duplicate accepted")
	}
	cb, ok := r.GetCallback("show_user")
	if !ok || !cb.AdminOnly {
		t.Fatalf("lookup = %+v %v", cb, ok)
	}
	if got := r.ListCallbacks(); len(got) != 1 {
		t.Fatalf("callbacks = %v", got)
	}
}
