package cpu

import (
	"testing"
)

func FuzzAlu(f *testing.F) {
	f.Add(uint8(0), uint8(0))
	f.Add(uint8(200), uint8(100))
	f.Add(uint8(255), uint8(255))

	f.Fuzz(func(t *testing.T, a, b uint8) {
		cpu, _ := newTestCpu(t,
			uint8(OP_LDI), 0, a,
			uint8(OP_LDI), 1, b,
			uint8(OP_ADD), 0, 1,
			uint8(OP_LDI), 2, a,
			uint8(OP_MUL), 2, 1,
			uint8(OP_HLT),
		)
		runTestCpu(t, cpu, 10)

		if int(cpu.Register[0]) != (int(a)+int(b))%256 {
			t.Errorf("%d + %d = %d", a, b, cpu.Register[0])
		}
		if int(cpu.Register[2]) != (int(a)*int(b))%256 {
			t.Errorf("%d * %d = %d", a, b, cpu.Register[2])
		}
	})
}

func FuzzStack(f *testing.F) {
	f.Add([]byte{1, 2, 3})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, values []byte) {
		if len(values) > 200 {
			values = values[:200]
		}

		cpu := NewCpu()
		for _, value := range values {
			err := cpu.Push(value)
			if err != nil {
				t.Fatal(err)
			}
		}

		for n := len(values) - 1; n >= 0; n-- {
			value, err := cpu.Pop()
			if err != nil {
				t.Fatal(err)
			}
			if value != values[n] {
				t.Fatalf("pop %d: got %d, expected %d", n, value, values[n])
			}
		}

		if cpu.Register[REG_SP] != STACK_TOP {
			t.Fatalf("sp %02X after balanced push/pop", cpu.Register[REG_SP])
		}
		if cpu.Pc != 0 {
			t.Fatalf("pc moved to %d", cpu.Pc)
		}
	})
}

func FuzzExecute(f *testing.F) {
	f.Add([]byte{0x82, 0x00, 0x08, 0x47, 0x00, 0x01})
	f.Add([]byte{0xff})

	// Arbitrary memory never panics.
	f.Fuzz(func(t *testing.T, image []byte) {
		if len(image) > MEMORY_SIZE {
			image = image[:MEMORY_SIZE]
		}

		cpu, _ := newTestCpu(t, image...)
		for range 1000 {
			if cpu.Tick() != nil {
				break
			}
		}
	})
}
