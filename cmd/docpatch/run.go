package main

import (
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/yamledit/docpatch"
	"github.com/yamledit/docpatch/value"
	"github.com/yamledit/docpatch/yamlpatch"
)

func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff takes a source and a target", cli.ErrUsage)
	}
	src, err := readDoc(cc, args[0], cfg.Y)
	if err != nil {
		return err
	}
	dst, err := readDoc(cc, args[1], cfg.Y)
	if err != nil {
		return err
	}
	if cfg.Text {
		return writeLineDiff(cc.Out, src, dst, colorFor(cc.Out))
	}
	p := docpatch.Diff(src, dst, cfg.flags())
	return writePatch(cc.Out, p, colorFor(cc.Out))
}

func apply(cfg *ApplyConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: apply takes a patch and a document", cli.ErrUsage)
	}
	p, err := readPatch(cc, args[0], cfg.Y)
	if err != nil {
		return err
	}
	if cfg.Y {
		data, err := readInput(cc.In, args[1])
		if err != nil {
			return err
		}
		out, err := yamlpatch.ApplyBytes(data, p, cfg.flags())
		if err != nil {
			return err
		}
		_, err = cc.Out.Write(out)
		return err
	}
	doc, err := readDoc(cc, args[1], false)
	if err != nil {
		return err
	}
	res, err := docpatch.Apply(p, doc, cfg.flags())
	if err != nil {
		return err
	}
	return writeDoc(cc.Out, res)
}

func validate(cfg *ValidateConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: validate takes one patch", cli.ErrUsage)
	}
	p, err := readPatch(cc, args[0], cfg.Y)
	if err != nil {
		return err
	}
	var flags docpatch.CompatFlags
	if cfg.NullMissing {
		flags = flags.With(docpatch.MissingValuesAsNulls)
	}
	if err := docpatch.Validate(p, flags); err != nil {
		return err
	}
	fmt.Fprintf(cc.Out, "%s: %d operations ok\n", args[0], len(p))
	return nil
}

func readPatch(cc *cli.Context, name string, yml bool) (docpatch.Patch, error) {
	v, err := readDoc(cc, name, yml)
	if err != nil {
		return nil, err
	}
	p, err := docpatch.DecodePatch(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return p, nil
}

func readDoc(cc *cli.Context, name string, yml bool) (*value.Value, error) {
	data, err := readInput(cc.In, name)
	if err != nil {
		return nil, err
	}
	parse := value.ParseJSON
	if yml {
		parse = value.ParseYAML
	}
	v, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}
