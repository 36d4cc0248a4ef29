package pipeline

import (
	"github.com/SaiNageswarS/doc-filler/errs"
)

// Pipeline is a compiled, ordered list of blocks.
type Pipeline struct {
	Blocks []Block
}

// Compile validates cfg and builds its blocks. Unknown block types and GPT_MODEL context
// connections whose source block does not exist are rejected.
func Compile(cfg Config) (*Pipeline, error) {
	p := &Pipeline{Blocks: make([]Block, 0, len(cfg.Blocks))}
	for _, spec := range cfg.Blocks {
		block, err := compileBlock(cfg.Blocks, spec)
		if err != nil {
			return nil, err
		}
		p.Blocks = append(p.Blocks, block)
	}
	return p, nil
}

func compileBlock(all []BlockSpec, spec BlockSpec) (Block, error) {
	id := blockID(spec.ID)

	switch spec.Type {
	case DocumentInput:
		return &DocumentInputBlock{id}, nil
	case TextInput:
		return &TextInputBlock{id}, nil
	case BlankFinder:
		return &BlankFinderBlock{id}, nil
	case GPTModel:
		context, err := resolveContext(all, spec)
		if err != nil {
			return nil, err
		}
		return &GPTModelBlock{blockID: id, Context: context, Model: spec.Config.Model}, nil
	case TemplateModel:
		return &TemplateModelBlock{blockID: id, Values: spec.Config.TemplateValues}, nil
	case DocumentOutput:
		return &DocumentOutputBlock{id}, nil
	default:
		return nil, errs.Validation("block %q: unknown block type %q", spec.ID, spec.Type)
	}
}

// resolveContext returns the text of the block feeding the "context" input. With several
// context connections the last one wins; the first block carrying a given id is used.
func resolveContext(all []BlockSpec, spec BlockSpec) (string, error) {
	context := ""
	for _, in := range spec.Config.Inputs {
		if in.TargetInput != contextInput {
			continue
		}

		source, ok := findBlock(all, in.SourceID)
		if !ok {
			return "", errs.Validation("block %q: context source %q not found", spec.ID, in.SourceID)
		}
		context = source.Config.Text
	}
	return context, nil
}

func findBlock(all []BlockSpec, id string) (BlockSpec, bool) {
	for _, b := range all {
		if b.ID == id {
			return b, true
		}
	}
	return BlockSpec{}, false
}
