package protocol

import "testing"

func BenchmarkEncodeOps(b *testing.B) {
	of := &OpsFrame{Seq: 1}
	for i := 0; i < 100; i++ {
		of.Ops = append(of.Ops, sampleOps()...)
	}
	e := NewEncoderWithCap(64 * 1024)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Reset()
		EncodeOpsTo(e, of)
	}
}

func BenchmarkDecodeOps(b *testing.B) {
	of := &OpsFrame{Seq: 1}
	for i := 0; i < 100; i++ {
		of.Ops = append(of.Ops, sampleOps()...)
	}
	data := EncodeOps(of)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := DecodeOps(data); err != nil {
			b.Fatal(err)
		}
	}
}
