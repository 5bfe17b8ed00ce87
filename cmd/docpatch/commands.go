package main

import (
	"github.com/scott-cotton/cli"

	"github.com/yamledit/docpatch"
)

const usageText = `docpatch - compute and apply RFC 6902 edit lists

Usage:
  docpatch diff [opts] <source> <target>   Print the edit list turning source into target
  docpatch apply [opts] <patch> <doc>      Print doc with patch applied
  docpatch validate [opts] <patch>         Check that patch is well formed

A file argument of "-" reads standard input.

Examples:
  docpatch diff -no-move a.json b.json
  docpatch diff -y -text old.yaml new.yaml
  docpatch apply -lenient-remove fix.json doc.json`

// MainCommand returns the root docpatch command.
func MainCommand() *cli.Command {
	return cli.NewCommand("docpatch").
		WithSynopsis("docpatch command [opts] files").
		WithDescription(usageText).
		WithSubs(
			DiffCommand(),
			ApplyCommand(),
			ValidateCommand(),
		)
}

type DiffConfig struct {
	*cli.Command

	KeepRemoveValue bool `cli:"name=keep-remove-value desc='include the removed value in remove operations'"`
	NoMove          bool `cli:"name=no-move desc='do not coalesce remove/add pairs into moves'"`
	NoCopy          bool `cli:"name=no-copy desc='do not turn adds of unchanged values into copies'"`
	Orig            bool `cli:"name=orig desc='record the overwritten value of a replace as fromValue'"`
	Tests           bool `cli:"name=tests desc='guard removes and replaces with test operations'"`
	Split           bool `cli:"name=split desc='emit each replace as a remove followed by an add'"`
	Y               bool `cli:"name=y aliases=yaml desc='read documents as yaml'"`
	Text            bool `cli:"name=text desc='print a line diff of the documents instead of an edit list'"`
}

func (cfg *DiffConfig) flags() docpatch.DiffFlags {
	f := docpatch.DefaultDiffFlags()
	if cfg.KeepRemoveValue {
		f = f.Without(docpatch.OmitValueOnRemove)
	}
	if cfg.NoMove {
		f = f.With(docpatch.OmitMoveOperation)
	}
	if cfg.NoCopy {
		f = f.With(docpatch.OmitCopyOperation)
	}
	if cfg.Orig {
		f = f.With(docpatch.AddOriginalValueOnReplace)
	}
	if cfg.Tests {
		f = f.With(docpatch.EmitTestOperations)
	}
	if cfg.Split {
		f = f.With(docpatch.AddExplicitRemoveAddOnReplace)
	}
	return f
}

func DiffCommand() *cli.Command {
	cfg := &DiffConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Command, "diff").
		WithAliases("d").
		WithSynopsis("diff [opts] <source> <target>").
		WithDescription("print the edit list turning source into target").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return diff(cfg, cc, args)
		})
}

type ApplyConfig struct {
	*cli.Command

	NullMissing   bool `cli:"name=null-missing desc='treat a missing value field as null'"`
	LenientRemove bool `cli:"name=lenient-remove desc='ignore removes of array elements that do not exist'"`
	Y             bool `cli:"name=y aliases=yaml desc='read and write yaml'"`
}

func (cfg *ApplyConfig) flags() docpatch.CompatFlags {
	f := docpatch.DefaultCompatFlags()
	if cfg.NullMissing {
		f = f.With(docpatch.MissingValuesAsNulls)
	}
	if cfg.LenientRemove {
		f = f.With(docpatch.RemoveNonexistentArrayElement)
	}
	return f
}

func ApplyCommand() *cli.Command {
	cfg := &ApplyConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Command, "apply").
		WithAliases("a", "patch").
		WithSynopsis("apply [opts] <patch> <doc>").
		WithDescription("apply an edit list to a document").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return apply(cfg, cc, args)
		})
}

type ValidateConfig struct {
	*cli.Command

	NullMissing bool `cli:"name=null-missing desc='treat a missing value field as null'"`
	Y           bool `cli:"name=y aliases=yaml desc='read the patch as yaml'"`
}

func ValidateCommand() *cli.Command {
	cfg := &ValidateConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Command, "validate").
		WithAliases("v").
		WithSynopsis("validate [opts] <patch>").
		WithDescription("check that an edit list is well formed").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return validate(cfg, cc, args)
		})
}
