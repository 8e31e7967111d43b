package filter

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-bitshuffle/internal/message"
)

// Pipeline represents a filter pipeline that encodes and decodes blocks.
// A Pipeline is safe for concurrent use once built.
type Pipeline struct {
	infos   []message.FilterInfo
	filters []Filter // nil for an optional filter that is not available
}

// NewPipeline creates a filter pipeline from a FilterPipeline message.
func NewPipeline(fp *message.FilterPipeline) (*Pipeline, error) {
	if fp == nil || len(fp.Filters) == 0 {
		return &Pipeline{}, nil
	}
	if len(fp.Filters) > message.MaxFilters {
		return nil, fmt.Errorf("%d filters exceeds maximum of %d", len(fp.Filters), message.MaxFilters)
	}

	p := &Pipeline{
		infos:   fp.Filters,
		filters: make([]Filter, len(fp.Filters)),
	}
	for i, info := range fp.Filters {
		f, err := New(info)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("creating %s filter: %w", Name(info.ID), err)
		}
		p.filters[i] = f
	}
	return p, nil
}

// Encode applies the filters in order and returns the encoded data with
// the filter mask to store alongside it. Bit i of the mask is set when
// filter i was skipped: an unavailable or failing optional filter, or a
// compressor whose output was not smaller than its input.
func (p *Pipeline) Encode(input []byte) ([]byte, uint32, error) {
	data := input
	var mask uint32

	for i, f := range p.filters {
		bit := uint32(1) << uint(i)
		if f == nil {
			mask |= bit
			continue
		}

		out, err := f.Encode(data)
		if err != nil {
			if p.infos[i].IsOptional() {
				mask |= bit
				continue
			}
			return nil, 0, fmt.Errorf("filter %d encode: %w", f.ID(), err)
		}
		if compressors[f.ID()] && len(out) >= len(data) {
			mask |= bit
			continue
		}
		data = out
	}

	return data, mask, nil
}

// Decode applies the filter pipeline to encoded data.
// The filterMask specifies which filters to skip (bit i = skip filter i).
// Filters are applied in reverse order (last filter first).
func (p *Pipeline) Decode(input []byte, filterMask uint32) ([]byte, error) {
	if filterMask>>uint(p.Len()) != 0 {
		return nil, fmt.Errorf("filter mask %#x has bits beyond %d filters", filterMask, p.Len())
	}
	if p.Empty() {
		return input, nil
	}

	data := input

	// Apply filters in reverse order
	for i := len(p.filters) - 1; i >= 0; i-- {
		// Check if this filter should be skipped
		if filterMask&(1<<uint(i)) != 0 {
			continue
		}
		if p.filters[i] == nil {
			return nil, fmt.Errorf("%s filter is not available", Name(p.infos[i].ID))
		}

		var err error
		data, err = p.filters[i].Decode(data)
		if err != nil {
			return nil, fmt.Errorf("filter %d decode: %w", p.filters[i].ID(), err)
		}
	}

	return data, nil
}

// Empty returns true if the pipeline has no filters.
func (p *Pipeline) Empty() bool {
	return len(p.filters) == 0
}

// Len returns the number of filters in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.filters)
}

// Names returns the filter names in pipeline order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.infos))
	for i, info := range p.infos {
		names[i] = Name(info.ID)
	}
	return names
}

// Close releases resources held by the filters, such as zstd codecs.
func (p *Pipeline) Close() error {
	var errs []error
	for _, f := range p.filters {
		if f != nil {
			if err := closeFilter(f); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
