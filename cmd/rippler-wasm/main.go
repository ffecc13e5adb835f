//go:build js && wasm

package main

import (
	"encoding/json"
	"os"
	"syscall/js"
	"unsafe"

	"github.com/cwbudde/algo-rippler/preset"
	"github.com/cwbudde/algo-rippler/rippler"
)

const maxBlock = 128

var (
	synth        *rippler.Synth
	sampleRate   int
	outputBuffer []float32
)

func main() {
	c := make(chan struct{})

	js.Global().Set("wasmInit", js.FuncOf(wasmInit))
	js.Global().Set("wasmNoteOn", js.FuncOf(wasmNoteOn))
	js.Global().Set("wasmNoteOff", js.FuncOf(wasmNoteOff))
	js.Global().Set("wasmPanic", js.FuncOf(wasmPanic))
	js.Global().Set("wasmSetProgram", js.FuncOf(wasmSetProgram))
	js.Global().Set("wasmApplyPreset", js.FuncOf(wasmApplyPreset))
	js.Global().Set("wasmLoadRoomIR", js.FuncOf(wasmLoadRoomIR))
	js.Global().Set("wasmProcessBlock", js.FuncOf(wasmProcessBlock))
	js.Global().Set("wasmGetMemoryBuffer", js.FuncOf(wasmGetMemoryBuffer))

	println("WASM rippler module loaded")
	<-c
}

func wasmInit(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return nil
	}
	sampleRate = args[0].Int()
	s, err := rippler.NewSynth(rippler.Config{SampleRate: sampleRate, Polyphony: 16})
	if err != nil {
		println("init failed:", err.Error())
		return nil
	}
	synth = s
	outputBuffer = make([]float32, maxBlock*2)
	println("Rippler initialized at", sampleRate, "Hz")
	return nil
}

func wasmNoteOn(this js.Value, args []js.Value) any {
	if len(args) < 2 || synth == nil {
		return nil
	}
	synth.NoteOn(args[0].Int(), args[1].Int())
	return nil
}

func wasmNoteOff(this js.Value, args []js.Value) any {
	if len(args) < 1 || synth == nil {
		return nil
	}
	synth.NoteOff(args[0].Int())
	return nil
}

func wasmPanic(this js.Value, args []js.Value) any {
	if synth != nil {
		synth.Panic()
	}
	return nil
}

func wasmSetProgram(this js.Value, args []js.Value) any {
	if len(args) < 1 || synth == nil {
		return false
	}
	p, err := preset.Program(args[0].String())
	if err != nil {
		println(err.Error())
		return false
	}
	synth.SetParams(p)
	return true
}

// wasmApplyPreset applies a preset JSON string on top of the current sound.
func wasmApplyPreset(this js.Value, args []js.Value) any {
	if len(args) < 1 || synth == nil {
		return false
	}
	var f preset.File
	if err := json.Unmarshal([]byte(args[0].String()), &f); err != nil {
		println("preset parse failed:", err.Error())
		return false
	}
	p := synth.Params()
	if f.Program != "" {
		base, err := preset.Program(f.Program)
		if err != nil {
			println(err.Error())
			return false
		}
		p = base
	}
	if err := preset.ApplyFile(&p, &f); err != nil {
		println("preset rejected:", err.Error())
		return false
	}
	synth.SetParams(p)
	return true
}

// wasmLoadRoomIR rebuilds the synth around a WAV impulse response passed as
// an ArrayBuffer. Sounding notes are cut.
func wasmLoadRoomIR(this js.Value, args []js.Value) any {
	if len(args) < 1 || synth == nil {
		return false
	}
	arrayBuffer := js.Global().Get("Uint8Array").New(args[0])
	length := arrayBuffer.Get("byteLength").Int()
	if length == 0 {
		println("IR data is empty")
		return false
	}
	irData := make([]byte, length)
	js.CopyBytesToGo(irData, arrayBuffer)

	tmpFile := "/tmp/room.wav"
	if err := os.WriteFile(tmpFile, irData, 0o644); err != nil {
		println("Failed to write IR file:", err.Error())
		return false
	}
	p := synth.Params()
	if p.RoomMix == 0 {
		p.RoomMix = 0.3
	}
	s, err := rippler.NewSynth(rippler.Config{SampleRate: sampleRate, Polyphony: 16, Params: &p, RoomIRPath: tmpFile})
	if err != nil {
		println("IR load failed:", err.Error())
		return false
	}
	synth = s
	println("IR loaded successfully:", length, "bytes")
	return true
}

func wasmProcessBlock(this js.Value, args []js.Value) any {
	if len(args) < 1 || synth == nil {
		return 0
	}
	numFrames := min(args[0].Int(), maxBlock)
	synth.Render(outputBuffer[:2*numFrames])
	ptr := &outputBuffer[0]
	return js.ValueOf(uintptr(unsafe.Pointer(ptr)))
}

func wasmGetMemoryBuffer(this js.Value, args []js.Value) any {
	return js.Global().Get("Go").Get("_inst").Get("exports").Get("mem").Get("buffer")
}
