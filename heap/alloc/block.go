package alloc

import "github.com/joshuapare/segalloc/internal/format"

// block is the payload address of a block in any state. It exposes the
// boundary tags and address-order neighbors, never the free-list links.
type block int

// freeBlock is a block whose tags say free. Only a freeBlock has meaningful
// prev/next links: they occupy the first two payload words, which belong to
// the caller once the block is allocated. A freeBlock is obtained from
// asFree, which checks the tag, or from markFree, which writes it.
type freeBlock int

// noFree is the empty link.
const noFree freeBlock = 0

func (a *Allocator) tag(b block) format.Tag {
	return format.ReadTag(a.data, format.HeaderOff(int(b)))
}

func (a *Allocator) size(b block) int {
	return a.tag(b).Size()
}

func (a *Allocator) allocated(b block) bool {
	return a.tag(b).Allocated()
}

// setTags rewrites header and footer together.
func (a *Allocator) setTags(b block, size int, allocated bool) {
	t := format.Pack(size, allocated)
	format.PutTag(a.data, format.HeaderOff(int(b)), t)
	format.PutTag(a.data, format.FooterOff(int(b), size), t)
}

func (a *Allocator) next(b block) block {
	return block(format.NextBlock(a.data, int(b)))
}

func (a *Allocator) prev(b block) block {
	return block(format.PrevBlock(a.data, int(b)))
}

// asFree narrows b to a freeBlock when its tag says it is free.
func (a *Allocator) asFree(b block) (freeBlock, bool) {
	if a.allocated(b) {
		return noFree, false
	}
	return freeBlock(b), true
}

// markFree writes free tags of the given size at b. The links are left
// untouched until the block is inserted into a list.
func (a *Allocator) markFree(b block, size int) freeBlock {
	a.setTags(b, size, false)
	return freeBlock(b)
}

func (a *Allocator) prevLink(f freeBlock) freeBlock {
	return freeBlock(format.ReadWord(a.data, int(f)+format.PrevLinkOffset))
}

func (a *Allocator) nextLink(f freeBlock) freeBlock {
	return freeBlock(format.ReadWord(a.data, int(f)+format.NextLinkOffset))
}

func (a *Allocator) setPrevLink(f, p freeBlock) {
	format.PutWord(a.data, int(f)+format.PrevLinkOffset, uint64(p))
}

func (a *Allocator) setNextLink(f, n freeBlock) {
	format.PutWord(a.data, int(f)+format.NextLinkOffset, uint64(n))
}
