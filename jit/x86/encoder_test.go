package x86

import (
	"bytes"
	"testing"
)

func TestPushPop(t *testing.T) {
	e32 := New(Arch32)
	if got := e32.Push(EAX); !bytes.Equal(got, []byte{0x50}) {
		t.Errorf("push eax = % x, want 50", got)
	}
	if got := e32.Pop(ECX); !bytes.Equal(got, []byte{0x59}) {
		t.Errorf("pop ecx = % x, want 59", got)
	}

	e64 := New(Arch64)
	if got := e64.Push(R8); !bytes.Equal(got, []byte{0x41, 0x50}) {
		t.Errorf("push r8 = % x, want 41 50", got)
	}
}

func TestRet(t *testing.T) {
	e := New(Arch32)
	if got := e.Ret(); !bytes.Equal(got, []byte{0xC3}) {
		t.Errorf("ret = % x, want c3", got)
	}
}

func TestMovRegImm32(t *testing.T) {
	e := New(Arch32)
	got, err := e.MovRegImm(EAX, 10, 4)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0xB8, 0x0A, 0x00, 0x00, 0x00}
	if !bytes.Equal(got, want) {
		t.Errorf("mov eax, 10 = % x, want % x", got, want)
	}
}

func TestCmpRegReg64REXW(t *testing.T) {
	e := New(Arch64)
	got, err := e.CmpRegReg(EAX, EDX, 8)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x48, 0x39, 0xD0}
	if !bytes.Equal(got, want) {
		t.Errorf("cmp rax, rdx = % x, want % x", got, want)
	}
}

func TestMovRegMem8(t *testing.T) {
	e := New(Arch32)
	got, err := e.MovRegMem8(EAX, EBX, ECX)
	if err != nil {
		t.Fatal(err)
	}
	// mov al, [ebx + ecx*1]: 8A modrm(00 reg=000 rm=100) sib(scale=00 index=ecx(001) base=ebx(011))
	want := []byte{0x8A, 0x04, 0x0B}
	if !bytes.Equal(got, want) {
		t.Errorf("mov al, [ebx+ecx] = % x, want % x", got, want)
	}
}

func TestMovRegMem8EBPBaseForcesDisp8(t *testing.T) {
	e := New(Arch32)
	got, err := e.MovRegMem8(EAX, EBP, ECX)
	if err != nil {
		t.Fatal(err)
	}
	// [ebp + ecx*1 + 0]: mod=01 rm=100 sib(scale00 index=ecx(001) base=ebp(101)) disp8=00
	want := []byte{0x8A, 0x44, 0x0D, 0x00}
	if !bytes.Equal(got, want) {
		t.Errorf("mov al, [ebp+ecx] = % x, want % x", got, want)
	}
}

func TestIncDiffersByArch(t *testing.T) {
	e32 := New(Arch32)
	got32, err := e32.Inc(ECX, 4)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got32, []byte{0x41}) {
		t.Errorf("32-bit inc ecx = % x, want 41 (short +rd form)", got32)
	}

	e64 := New(Arch64)
	got64, err := e64.Inc(ECX, 4)
	if err != nil {
		t.Fatal(err)
	}
	want64 := []byte{0xFF, 0xC1} // inc ecx via r/m form: modrm mod=11 opex=0 rm=ecx(001)
	if !bytes.Equal(got64, want64) {
		t.Errorf("64-bit inc ecx = % x, want % x", got64, want64)
	}
}

func TestJmpRel32Encoding(t *testing.T) {
	e := New(Arch32)
	got := e.JmpRel32(-10)
	if len(got) != 5 || got[0] != 0xE9 {
		t.Fatalf("jmp rel32 = % x, want 5 bytes starting with E9", got)
	}
}

func TestIndexCannotBeESP(t *testing.T) {
	e := New(Arch32)
	if _, err := e.MovRegMem8(EAX, EBX, ESP); err == nil {
		t.Error("expected error using ESP as SIB index")
	}
}
