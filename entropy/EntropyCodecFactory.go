/*
Copyright 2011-2025 Frederic Langlet
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
you may obtain a copy of the License at

                http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package entropy

import (
	"fmt"
	"strings"
	"time"

	kanzi "github.com/kanzilite/kanzi"
)

const (
	NONE_TYPE    = uint32(0)  // No compression
	HUFFMAN_TYPE = uint32(1)  // Huffman
	FPAQ_TYPE    = uint32(2)  // Fast PAQ (order 0)
	PAQ_TYPE     = uint32(3)  // Obsolete
	RANGE_TYPE   = uint32(4)  // Range
	ANS0_TYPE    = uint32(5)  // Asymmetric Numerical System order 0
	CM_TYPE      = uint32(6)  // Context Model
	TPAQ_TYPE    = uint32(7)  // Tangelo PAQ
	ANS1_TYPE    = uint32(8)  // Asymmetric Numerical System order 1
	TPAQX_TYPE   = uint32(9)  // Tangelo PAQ Extra
	RESERVED1    = uint32(10) // Reserved
	RESERVED2    = uint32(11) // Reserved
	RESERVED3    = uint32(12) // Reserved
	RESERVED4    = uint32(13) // Reserved
	RESERVED5    = uint32(14) // Reserved
	RESERVED6    = uint32(15) // Reserved
)

// entropyCtxSize reads the optional "size" hint (the block size about to be
// processed) out of a codec context, for use in EVT_BEFORE_ENTROPY /
// EVT_AFTER_ENTROPY events. Absent or wrongly-typed, it is reported as 0.
func entropyCtxSize(ctx map[string]any) int64 {
	if val, has := ctx["size"]; has {
		if sz, ok := val.(int64); ok {
			return sz
		}
	}

	return 0
}

// entropyCtxListeners reads the optional "listeners" key out of a codec
// context. A caller that wants EVT_BEFORE_ENTROPY/EVT_AFTER_ENTROPY
// notifications around a factory-built coder's construction sets this key
// to a []kanzi.Listener before calling NewEntropyEncoder/NewEntropyDecoder;
// a caller that does not care pays nothing (the slice is nil, NotifyListeners
// is a no-op on an empty slice).
func entropyCtxListeners(ctx map[string]any) []kanzi.Listener {
	listeners, _ := ctx["listeners"].([]kanzi.Listener)
	return listeners
}

// NewEntropyDecoder creates a new entropy decoder using the provided type and bitstream
func NewEntropyDecoder(ibs kanzi.InputBitStream, ctx map[string]any,
	entropyType uint32) (dec kanzi.EntropyDecoder, err error) {
	listeners := entropyCtxListeners(ctx)

	if len(listeners) > 0 {
		NotifyListeners(listeners, kanzi.NewEvent(kanzi.EVT_BEFORE_ENTROPY, -1, entropyCtxSize(ctx), 0, kanzi.EVT_HASH_NONE, time.Now()))

		defer func() {
			if err == nil {
				NotifyListeners(listeners, kanzi.NewEvent(kanzi.EVT_AFTER_ENTROPY, -1, entropyCtxSize(ctx), 0, kanzi.EVT_HASH_NONE, time.Now()))
			}
		}()
	}

	switch entropyType {

	case HUFFMAN_TYPE:
		dec, err = NewHuffmanDecoderWithCtx(ibs, &ctx)
		return

	case ANS0_TYPE:
		dec, err = NewANSRangeDecoderWithCtx(ibs, 0, &ctx)
		return

	case ANS1_TYPE:
		dec, err = NewANSRangeDecoderWithCtx(ibs, 1, &ctx)
		return

	case RANGE_TYPE:
		dec, err = NewRangeDecoderWithCtx(ibs, &ctx)
		return

	case FPAQ_TYPE:
		dec, err = NewFPAQDecoderWithCtx(ibs, &ctx)
		return

	case CM_TYPE:
		predictor, _ := NewCMPredictor(&ctx)
		dec, err = NewBinaryEntropyDecoder(ibs, predictor)
		return

	case TPAQ_TYPE, TPAQX_TYPE:
		predictor, _ := NewTPAQPredictor(&ctx)
		dec, err = NewBinaryEntropyDecoder(ibs, predictor)
		return

	case NONE_TYPE:
		dec, err = NewNullEntropyDecoder(ibs)
		return

	default:
		err = fmt.Errorf("Unsupported entropy codec type: '%d'", entropyType)
		return
	}
}

// NewEntropyEncoder creates a new entropy encoder using the provided type and bitstream
func NewEntropyEncoder(obs kanzi.OutputBitStream, ctx map[string]any,
	entropyType uint32) (enc kanzi.EntropyEncoder, err error) {
	listeners := entropyCtxListeners(ctx)

	if len(listeners) > 0 {
		NotifyListeners(listeners, kanzi.NewEvent(kanzi.EVT_BEFORE_ENTROPY, -1, entropyCtxSize(ctx), 0, kanzi.EVT_HASH_NONE, time.Now()))

		defer func() {
			if err == nil {
				NotifyListeners(listeners, kanzi.NewEvent(kanzi.EVT_AFTER_ENTROPY, -1, entropyCtxSize(ctx), 0, kanzi.EVT_HASH_NONE, time.Now()))
			}
		}()
	}

	switch entropyType {

	case HUFFMAN_TYPE:
		enc, err = NewHuffmanEncoder(obs)
		return

	case ANS0_TYPE:
		enc, err = NewANSRangeEncoderWithCtx(obs, 0, &ctx)
		return

	case ANS1_TYPE:
		enc, err = NewANSRangeEncoderWithCtx(obs, 1, &ctx)
		return

	case RANGE_TYPE:
		enc, err = NewRangeEncoderWithCtx(obs, &ctx)
		return

	case FPAQ_TYPE:
		enc, err = NewFPAQEncoderWithCtx(obs, &ctx)
		return

	case CM_TYPE:
		predictor, _ := NewCMPredictor(&ctx)
		enc, err = NewBinaryEntropyEncoder(obs, predictor)
		return

	case TPAQ_TYPE, TPAQX_TYPE:
		predictor, _ := NewTPAQPredictor(&ctx)
		enc, err = NewBinaryEntropyEncoder(obs, predictor)
		return

	case NONE_TYPE:
		enc, err = NewNullEntropyEncoder(obs)
		return

	default:
		err = fmt.Errorf("Unsupported entropy codec type: '%d'", entropyType)
		return
	}
}

// GetName returns the name of the entropy codec given its type
func GetName(entropyType uint32) (string, error) {
	switch entropyType {

	case HUFFMAN_TYPE:
		return "HUFFMAN", nil

	case ANS0_TYPE:
		return "ANS0", nil

	case ANS1_TYPE:
		return "ANS1", nil

	case RANGE_TYPE:
		return "RANGE", nil

	case FPAQ_TYPE:
		return "FPAQ", nil

	case CM_TYPE:
		return "CM", nil

	case TPAQ_TYPE:
		return "TPAQ", nil

	case TPAQX_TYPE:
		return "TPAQX", nil

	case NONE_TYPE:
		return "NONE", nil

	default:
		return "", fmt.Errorf("Unsupported entropy codec type: '%d'", entropyType)
	}
}

// NotifyListeners dispatches evt to every listener, swallowing panics from a
// misbehaving listener so that instrumentation can never break a codec run.
func NotifyListeners(listeners []kanzi.Listener, evt *kanzi.Event) {
	for _, l := range listeners {
		func() {
			defer func() { recover() }()
			l.ProcessEvent(evt)
		}()
	}
}

// GetType returns the type of the entropy codec given its name
func GetType(entropyName string) (uint32, error) {
	switch strings.ToUpper(entropyName) {

	case "HUFFMAN":
		return HUFFMAN_TYPE, nil

	case "ANS0":
		return ANS0_TYPE, nil

	case "ANS1":
		return ANS1_TYPE, nil

	case "RANGE":
		return RANGE_TYPE, nil

	case "FPAQ":
		return FPAQ_TYPE, nil

	case "CM":
		return CM_TYPE, nil

	case "TPAQ":
		return TPAQ_TYPE, nil

	case "TPAQX":
		return TPAQX_TYPE, nil

	case "NONE":
		return NONE_TYPE, nil

	default:
		return 0, fmt.Errorf("Unsupported entropy codec type: '%v'", entropyName)
	}
}
