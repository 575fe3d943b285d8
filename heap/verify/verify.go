package verify

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/joshuapare/segalloc/internal/format"
)

// Walk checks every invariant of the arena in h and returns the findings.
// It never modifies h.Data.
func Walk(h Heap) *Report {
	r := &Report{HeapSize: len(h.Data), Epilogue: -1}
	if len(h.Data) < format.FirstBlockAddr {
		r.add(KindTruncated, 0, "arena holds %d bytes, bootstrap area needs %d",
			len(h.Data), format.FirstBlockAddr)
		return r
	}

	w := &walker{
		Heap:   h,
		r:      r,
		free:   roaring.New(),
		used:   roaring.New(),
		listed: roaring.New(),
	}
	w.checkPrologue()
	w.walkBlocks()
	w.walkBuckets()
	w.checkListed()
	return r
}

type walker struct {
	Heap
	r *Report

	free   *roaring.Bitmap // free blocks met by the address walk
	used   *roaring.Bitmap // allocated blocks met by the address walk
	listed *roaring.Bitmap // blocks reached through the buckets
}

// key maps a DSize-aligned payload address to its bitmap slot.
func key(bp int) uint32 {
	return uint32(bp / format.DSize)
}

func (w *walker) checkPrologue() {
	want := format.Pack(format.PrologueSize, true)
	bp := format.PrologueAddr

	hdr := format.ReadTag(w.Data, format.HeaderOff(bp))
	ftr := format.ReadTag(w.Data, format.FooterOff(bp, format.PrologueSize))
	if hdr != want {
		w.r.add(KindPrologue, bp, "bad prologue header %s, want %s", hdr, want)
	}
	if ftr != want {
		w.r.add(KindPrologue, bp, "bad prologue footer %s, want %s", ftr, want)
	}
}

// walkBlocks follows the header sizes from the prologue to the epilogue.
func (w *walker) walkBlocks() {
	prevFree := false

	for bp := format.PrologueAddr; ; {
		hdrOff := format.HeaderOff(bp)
		if err := format.CheckWord(w.Data, hdrOff); err != nil {
			w.r.add(KindTruncated, bp, "header: %v", err)
			return
		}
		hdr := format.ReadTag(w.Data, hdrOff)
		size := hdr.Size()

		if size == 0 {
			w.r.Epilogue = bp
			if !hdr.Allocated() {
				w.r.add(KindEpilogue, bp, "epilogue header %s is not allocated", hdr)
			}
			if last := len(w.Data) - format.WSize; hdrOff != last {
				w.r.add(KindEpilogue, bp, "epilogue header at %#x, last word of the arena is %#x", hdrOff, last)
			}
			return
		}

		// A corrupt size must not send the walk backwards or past the end.
		if size < 0 {
			w.r.add(KindBadSize, bp, "header %s holds a negative size", hdr)
			return
		}
		if size > len(w.Data)-bp {
			w.r.add(KindTruncated, bp, "%s block runs past the end of the %d-byte arena", hdr, len(w.Data))
			return
		}

		ftrOff := format.FooterOff(bp, size)
		if err := format.CheckWord(w.Data, ftrOff); err != nil {
			w.r.add(KindTruncated, bp, "footer of %s block: %v", hdr, err)
			return
		}
		ftr := format.ReadTag(w.Data, ftrOff)

		if !format.IsAligned(bp) {
			w.r.add(KindAlignment, bp, "payload address is not %d-byte aligned", format.DSize)
		}
		if hdr != ftr {
			w.r.add(KindTagMismatch, bp, "header %s does not match footer %s", hdr, ftr)
		}
		w.r.Blocks = append(w.r.Blocks, BlockInfo{Addr: bp, Header: hdr, Footer: ftr})

		if bp == format.PrologueAddr {
			bp += size
			continue
		}
		if size < format.MinBlockSize {
			w.r.add(KindBadSize, bp, "block of %d bytes is below the minimum %d", size, format.MinBlockSize)
		}

		if hdr.Allocated() {
			w.r.AllocatedBlocks++
			w.r.AllocatedBytes += size
			w.used.Add(key(bp))
			prevFree = false
		} else {
			w.r.FreeBlocks++
			w.r.FreeBytes += size
			w.free.Add(key(bp))
			if prevFree {
				prev := w.r.Blocks[len(w.r.Blocks)-2]
				w.r.add(KindUncoalesced, bp, "free block %s follows free block %#x %s",
					hdr, prev.Addr, prev.Header)
			}
			prevFree = true
		}
		bp += size
	}
}

// walkBuckets follows every bucket from its head. A scan stops at the first
// link it cannot trust.
func (w *walker) walkBuckets() {
	for class := range format.NumClasses {
		headSlot := format.HeadsOffset + class*format.WSize
		tailSlot := format.TailsOffset + class*format.WSize

		prev := 0
		complete := true
		for f := int(format.ReadWord(w.Data, headSlot)); f != 0; {
			if f < format.FirstBlockAddr || f >= len(w.Data) || !format.IsAligned(f) {
				w.r.add(KindDangling, f, "bucket %d links to an address outside the heap", class)
				complete = false
				break
			}
			k := key(f)
			if !w.listed.CheckedAdd(k) {
				w.r.add(KindDuplicate, f, "bucket %d reaches a block already listed", class)
				complete = false
				break
			}
			w.r.ListedBlocks++

			if w.used.Contains(k) {
				w.r.add(KindAllocatedListed, f, "allocated block linked into bucket %d", class)
				complete = false
				break
			}
			if !w.free.Contains(k) {
				w.r.add(KindDangling, f, "bucket %d links to an address that is not a block", class)
				complete = false
				break
			}

			size := format.ReadTag(w.Data, format.HeaderOff(f)).Size()
			if size < format.MinBlockSize {
				// Already reported by the address walk; too small to hold links.
				complete = false
				break
			}
			if w.ClassOf != nil {
				if want := w.ClassOf(size); want != class {
					w.r.add(KindWrongBucket, f, "block of %d bytes in bucket %d, belongs in %d", size, class, want)
				}
			}
			if back := int(format.ReadWord(w.Data, f+format.PrevLinkOffset)); back != prev {
				w.r.add(KindBrokenLink, f, "prev link %#x, expected %#x", back, prev)
			}

			prev = f
			f = int(format.ReadWord(w.Data, f+format.NextLinkOffset))
		}

		if complete {
			if tail := int(format.ReadWord(w.Data, tailSlot)); tail != prev {
				w.r.add(KindBrokenLink, tailSlot, "bucket %d tail %#x, last linked block %#x", class, tail, prev)
			}
		}
	}
}

// checkListed reports free blocks that no bucket reached.
func (w *walker) checkListed() {
	missing := roaring.AndNot(w.free, w.listed)
	it := missing.Iterator()
	for it.HasNext() {
		bp := int(it.Next()) * format.DSize
		size := format.ReadTag(w.Data, format.HeaderOff(bp)).Size()
		w.r.add(KindNotListed, bp, "free block of %d bytes is in no bucket", size)
	}
}
