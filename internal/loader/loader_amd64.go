//go:build amd64

package loader

//go:noescape
func callBool(entry uintptr, str *byte, length int64) int64

// CallBool invokes the loaded matcher against s and reports whether it
// accepts. This is the only way into the mapped page: the asm
// trampoline in loader_call_*_amd64.s crosses from Go's calling
// convention into whichever native ABI the code was compiled for.
func (f *Func) CallBool(s []byte) bool {
	var ptr *byte
	if len(s) > 0 {
		ptr = &s[0]
	}
	return callBool(f.entry, ptr, int64(len(s))) != 0
}
