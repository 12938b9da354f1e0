/*
Copyright 2011-2024 Frederic Langlet
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
	"container/heap"
	"fmt"

	kanzi "github.com/kanzilite/kanzi"
)

const (
	// INCOMPRESSIBLE_THRESHOLD Any block with entropy*1024 greater than this threshold is considered incompressible
	INCOMPRESSIBLE_THRESHOLD = 973

	_FULL_ALPHABET    = 0 // Flag for full alphabet encoding
	_PARTIAL_ALPHABET = 1 // Flag for partial alphabet encoding
	_ALPHABET_256     = 0 // Flag for alphabet with 256 symbols
	_ALPHABET_NOT_256 = 1 // Flag for full alphabet with an explicit, non-256 size

	_BIT_ENCODED_ALPHABET_256 = 1 // Flag for 256-bit presence mask encoding
	_DELTA_ENCODED_ALPHABET   = 0 // Flag for chunked delta encoding

	_PRESENT_SYMBOLS_MASK = 0 // The coded side lists symbols that are present
	_ABSENT_SYMBOLS_MASK  = 1 // The coded side lists symbols that are absent

	_BIT_MASK_MIN_COUNT = 32  // Smallest count eligible for the 256-bit presence mask
	_BIT_MASK_MAX_COUNT = 224 // Largest count eligible for the 256-bit presence mask

	_DELTA_SMALL_CHUNK = 8  // Chunk size used when the coded side has <= 64 symbols
	_DELTA_LARGE_CHUNK = 16 // Chunk size used otherwise
)

// freqSortData associates a symbol with the (shared) arrays of its current
// frequency and rounding error, so the priority queue below can re-read
// up-to-date values after a symbol has been distorted and re-enqueued.
type freqSortData struct {
	frequencies []int
	errors      []int
	symbol      int
}

// freqSortPriorityQueue orders symbols by decreasing rounding error, then
// decreasing frequency, then decreasing symbol value. It is consumed greedily
// by NormalizeFrequencies to spread a +-1 correction where it distorts the
// distribution least.
type freqSortPriorityQueue []*freqSortData

func (this freqSortPriorityQueue) Len() int {
	return len(this)
}

func (this freqSortPriorityQueue) Less(i, j int) bool {
	di := this[i]
	dj := this[j]

	if di.errors[di.symbol] != dj.errors[dj.symbol] {
		return di.errors[di.symbol] > dj.errors[dj.symbol]
	}

	if di.frequencies[di.symbol] != dj.frequencies[dj.symbol] {
		return di.frequencies[di.symbol] > dj.frequencies[dj.symbol]
	}

	return dj.symbol < di.symbol
}

func (this freqSortPriorityQueue) Swap(i, j int) {
	this[i], this[j] = this[j], this[i]
}

func (this *freqSortPriorityQueue) Push(data any) {
	*this = append(*this, data.(*freqSortData))
}

func (this *freqSortPriorityQueue) Pop() any {
	old := *this
	n := len(old)
	data := old[n-1]
	*this = old[0 : n-1]
	return data
}

func bitsFor(count int) uint {
	log := uint(1)

	for 1<<log <= count {
		log++
	}

	return log
}

// EncodeAlphabet writes the alphabet to the bitstream and returns the number
// of symbols written or an error.
// alphabet must hold values in [0..255] sorted in increasing order; its
// capacity must be a power of 2 up to 256.
//
// The stream carries a two-level tag. A full alphabet (every slot of the
// caller-provided capacity is used) is recorded as an explicit size; any
// other alphabet is partial and is coded either as a 256-bit presence mask
// (cheap for mid-sized alphabets) or as a chunked delta sequence over
// whichever side - present or absent symbols - is smaller.
func EncodeAlphabet(obs kanzi.OutputBitStream, alphabet []int) (int, error) {
	alphabetSize := cap(alphabet)
	count := len(alphabet)

	if alphabetSize&(alphabetSize-1) != 0 {
		return 0, fmt.Errorf("The alphabet length must be a power of 2, got %v", alphabetSize)
	}

	if alphabetSize > 256 {
		return 0, fmt.Errorf("The max alphabet length is 256, got %v", alphabetSize)
	}

	if count == 0 || count == alphabetSize {
		// Full alphabet: decoder rebuilds 0..count-1 directly, no symbol list needed.
		obs.WriteBit(_FULL_ALPHABET)

		if count == 256 {
			obs.WriteBit(_ALPHABET_256)
		} else {
			log := bitsFor(count)
			obs.WriteBit(_ALPHABET_NOT_256)
			obs.WriteBits(uint64(log-1), 5)
			obs.WriteBits(uint64(count), log)
		}

		return count, nil
	}

	// Partial alphabet.
	obs.WriteBit(_PARTIAL_ALPHABET)

	if count >= _BIT_MASK_MIN_COUNT && count <= _BIT_MASK_MAX_COUNT {
		obs.WriteBit(_BIT_ENCODED_ALPHABET_256)
		var masks [4]uint64

		for i := 0; i < count; i++ {
			s := alphabet[i]
			masks[s>>6] |= uint64(1) << uint(s&63)
		}

		for i := 0; i < 4; i++ {
			obs.WriteBits(masks[i], 64)
		}

		return count, nil
	}

	obs.WriteBit(_DELTA_ENCODED_ALPHABET)
	present := make(map[int]bool, count)

	for i := 0; i < count; i++ {
		present[alphabet[i]] = true
	}

	var coded []int
	maskSide := _PRESENT_SYMBOLS_MASK

	if count <= 256-count {
		coded = alphabet[:count]
	} else {
		maskSide = _ABSENT_SYMBOLS_MASK
		coded = make([]int, 0, 256-count)

		for s := 0; s < 256; s++ {
			if !present[s] {
				coded = append(coded, s)
			}
		}
	}

	log := bitsFor(len(coded))
	obs.WriteBits(uint64(log-1), 4)
	obs.WriteBits(uint64(len(coded)), log)
	obs.WriteBit(maskSide)

	chunkSize := _DELTA_LARGE_CHUNK

	if len(coded) <= 64 {
		chunkSize = _DELTA_SMALL_CHUNK
	}

	prev := -1

	for start := 0; start < len(coded); start += chunkSize {
		end := start + chunkSize

		if end > len(coded) {
			end = len(coded)
		}

		deltas := make([]uint, end-start)
		logMax := uint(1)

		for i := start; i < end; i++ {
			d := uint(coded[i] - prev)
			deltas[i-start] = d
			prev = coded[i]

			for 1<<logMax <= int(d) {
				logMax++
			}
		}

		obs.WriteBits(uint64(logMax-1), 4)

		for _, d := range deltas {
			obs.WriteBits(uint64(d), logMax)
		}
	}

	return count, nil
}

// DecodeAlphabet reads the alphabet from the bitstream and returns the number
// of symbols read or an error.
func DecodeAlphabet(ibs kanzi.InputBitStream, alphabet []int) (int, error) {
	if ibs.ReadBit() == _FULL_ALPHABET {
		var alphabetSize int

		if ibs.ReadBit() == _ALPHABET_256 {
			alphabetSize = 256
		} else {
			log := uint(1 + ibs.ReadBits(5))
			alphabetSize = int(ibs.ReadBits(log))
		}

		if alphabetSize > len(alphabet) {
			return alphabetSize, fmt.Errorf("Invalid bitstream: incorrect alphabet size: %v", alphabetSize)
		}

		for i := 0; i < alphabetSize; i++ {
			alphabet[i] = i
		}

		return alphabetSize, nil
	}

	// Partial alphabet.
	if ibs.ReadBit() == _BIT_ENCODED_ALPHABET_256 {
		var masks [4]uint64

		for i := 0; i < 4; i++ {
			masks[i] = ibs.ReadBits(64)
		}

		count := 0

		for i := 0; i < 4; i++ {
			for j := 0; j < 64; j++ {
				if masks[i]&(uint64(1)<<uint(j)) != 0 {
					alphabet[count] = (i << 6) + j
					count++
				}
			}
		}

		return count, nil
	}

	log := uint(1 + ibs.ReadBits(4))
	codedCount := int(ibs.ReadBits(log))

	if codedCount > 256 {
		return codedCount, fmt.Errorf("Invalid bitstream: incorrect alphabet size: %v", codedCount)
	}

	maskSide := ibs.ReadBit()
	chunkSize := _DELTA_LARGE_CHUNK

	if codedCount <= 64 {
		chunkSize = _DELTA_SMALL_CHUNK
	}

	coded := make([]int, codedCount)
	prev := -1

	for start := 0; start < codedCount; start += chunkSize {
		end := start + chunkSize

		if end > codedCount {
			end = codedCount
		}

		logMax := uint(1 + ibs.ReadBits(4))

		for i := start; i < end; i++ {
			prev += int(ibs.ReadBits(logMax))
			coded[i] = prev
		}
	}

	if int(maskSide) == _PRESENT_SYMBOLS_MASK {
		copy(alphabet, coded)
		return codedCount, nil
	}

	// coded lists absent symbols; the alphabet is the complement.
	absent := make([]bool, 256)

	for _, s := range coded {
		absent[s] = true
	}

	count := 0

	for s := 0; s < 256; s++ {
		if !absent[s] {
			alphabet[count] = s
			count++
		}
	}

	return count, nil
}

// NormalizeFrequencies scales the frequencies so that their sum equals 'scale'.
// Returns the size of the alphabet or an error.
// The alphabet and freqs parameters are updated.
func NormalizeFrequencies(freqs []int, alphabet []int, totalFreq, scale int) (int, error) {
	if len(alphabet) > 256 {
		return 0, fmt.Errorf("Invalid alphabet size parameter: %v (must be less than or equal to 256)", len(alphabet))
	}

	if scale < 256 || scale > 65536 {
		return 0, fmt.Errorf("Invalid range parameter: %v (must be in [256..65536])", scale)
	}

	if len(alphabet) == 0 || totalFreq == 0 {
		return 0, nil
	}

	alphabetSize := 0

	// Shortcut
	if totalFreq == scale {
		for i := 0; i < 256; i++ {
			if freqs[i] != 0 {
				alphabet[alphabetSize] = i
				alphabetSize++
			}
		}

		return alphabetSize, nil
	}

	var errs [256]int
	sumScaledFreq := 0
	freqMax := 0
	idxMax := -1

	// Scale frequencies by stretching distribution over the complete range
	for i := range alphabet {
		alphabet[i] = 0
		errs[i] = 0
		f := freqs[i]

		if f == 0 {
			continue
		}

		if f > freqMax {
			freqMax = f
			idxMax = i
		}

		sf := int64(freqs[i]) * int64(scale)
		var scaledFreq int

		if sf <= int64(totalFreq) {
			// Quantum of frequency
			scaledFreq = 1
		} else {
			// Find best frequency rounding value
			scaledFreq = int(sf / int64(totalFreq))
			errCeiling := int64(scaledFreq+1)*int64(totalFreq) - sf
			errFloor := sf - int64(scaledFreq)*int64(totalFreq)

			if errCeiling < errFloor {
				scaledFreq++
				errs[i] = int(errCeiling)
			} else {
				errs[i] = int(errFloor)
			}
		}

		alphabet[alphabetSize] = i
		alphabetSize++
		sumScaledFreq += scaledFreq
		freqs[i] = scaledFreq
	}

	if alphabetSize == 0 {
		return 0, nil
	}

	if alphabetSize == 1 {
		freqs[alphabet[0]] = scale
		return 1, nil
	}

	if sumScaledFreq != scale {
		errThr := freqs[idxMax] >> 4
		delta := sumScaledFreq - scale
		absDelta := delta

		if absDelta < 0 {
			absDelta = -absDelta
		}

		if absDelta <= errThr {
			// Fast path (small error): just adjust the max frequency
			freqs[idxMax] -= delta
			return alphabetSize, nil
		}

		var inc int

		if sumScaledFreq > scale {
			inc = -1
		} else {
			inc = 1
		}

		queue := make(freqSortPriorityQueue, 0, alphabetSize)

		// Create a priority queue of present symbols, skipping those at the
		// quantum frequency (their error was never recorded) to avoid
		// distorting the smallest entries first.
		for i := 0; i < alphabetSize; i++ {
			if errs[alphabet[i]] > 0 && freqs[alphabet[i]] != -inc {
				heap.Push(&queue, &freqSortData{errors: errs[:], frequencies: freqs, symbol: alphabet[i]})
			}
		}

		for sumScaledFreq != scale && len(queue) > 0 {
			fsd := heap.Pop(&queue).(*freqSortData)

			// Do not zero out any frequency
			if freqs[fsd.symbol] == -inc {
				continue
			}

			freqs[fsd.symbol] += inc
			errs[fsd.symbol] -= scale
			sumScaledFreq += inc
			heap.Push(&queue, fsd)
		}

		// Residual (every candidate was at the quantum frequency): spread
		// the remaining error across the full alphabet, skipping zeroes.
		for i := 0; sumScaledFreq != scale && i < alphabetSize; i++ {
			if freqs[alphabet[i]] != -inc {
				freqs[alphabet[i]] += inc
				sumScaledFreq += inc
			}
		}
	}

	return alphabetSize, nil
}

// WriteVarInt writes the provided value to the bitstream as a VarInt.
// Returns the number of bytes written.
func WriteVarInt(bs kanzi.OutputBitStream, value uint32) int {
	res := 0

	for value >= 128 {
		bs.WriteBits(uint64(0x80|(value&0x7F)), 8)
		value >>= 7
		res++
	}

	bs.WriteBits(uint64(value), 8)
	return res + 1
}

// ReadVarInt reads a VarInt from the bitstream and returns it as an uint32.
func ReadVarInt(bs kanzi.InputBitStream) uint32 {
	value := uint32(bs.ReadBits(8))

	if value < 128 {
		return value
	}

	res := value & 0x7F
	value = uint32(bs.ReadBits(8))
	res |= (value & 0x7F) << 7

	if value >= 128 {
		value = uint32(bs.ReadBits(8))
		res |= (value & 0x7F) << 14

		if value >= 128 {
			value = uint32(bs.ReadBits(8))
			res |= (value & 0x7F) << 21
		}
	}

	return res
}
