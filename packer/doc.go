// Package packer implements a best-fit 2D rectangle packer.
//
// A Packer manages one fixed-size area. Each Pack call searches the free
// rectangles for the smallest one that can hold the request, places the
// request at that rectangle's top-left corner and fragments the surrounding
// free space:
//
//	p := packer.New(256, 256)
//	r := packer.Size(64, 32)
//	if p.Pack(&r) {
//	    // r now spans (r.Left, r.Top) .. (r.Right, r.Bottom)
//	}
//	p.Free(r)
//
// The packer is the leaf of the atlas allocator and knows nothing about
// pixels or textures.
package packer
