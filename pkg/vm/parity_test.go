package vm_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"minicpp/pkg/asm"
	"minicpp/pkg/compiler"
	"minicpp/pkg/interp"
	"minicpp/pkg/vm"
)

// Every program must print the same text and fail the same way on both
// back ends.
func TestInterpreterParity(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"expression", "2 + 3 * 4"},
		{"bubble sort", `int main() {
    int arr[] = {64, 25, 12, 22, 11, 90};
    int n = 6;
    int temp;
    for (int i = 0; i < n - 1; i++) {
        for (int j = 0; j < n - i - 1; j++) {
            if (arr[j] > arr[j + 1]) {
                temp = arr[j];
                arr[j] = arr[j + 1];
                arr[j + 1] = temp;
            }
        }
    }
    for (int i = 0; i < n; i++) {
        cout << arr[i] << " ";
    }
    return 0;
}`},
		{"while and break", `int main() {
    int i = 0;
    while (i < 10) {
        cout << i << ",";
        if (i == 2) { break; }
        i++;
    }
    cout << "|" << i;
}`},
		{"header before keyword", "int main() { (i++; i < 3; int i = 0) for { cout << i; } }"},
		{"sizeof", "int main() { int a[3]; float f = 1.5; string s = \"hola\"; cout << sizeof(a) << sizeof(f) << sizeof(s) << sizeof(a[1]) << sizeof(2); }"},
		{"floats and strings", `int main() { float x = 7 / 2.0; cout << x << endl << "a" + "b" << (1 < 2) << ("x" == 3); }`},
		{"unsized arrays fall back to 4", "int main() { int v[]; v[4] = 1; w[2] = 1; cout << sizeof(v) << sizeof(w); }"},
		{"array scalar initializer ignored", "int main() { int a[3] = missing; cout << sizeof(a) << a[1]; }"},
		{"array created on write", "int main() { w[2] = 9; cout << w[2] << w[0]; }"},
		{"increment element", "int main() { int a[2] = {1, 2}; a[1]++; cout << a[1]++ << a[1]; }"},
		{"switch evaluates subject only", "int main() { int k = 1; switch (k) { case : cout << 1; break; case : cout << 2; } cout << 3; }"},
		{"top level break", "int main() { cout << 1; break; cout << 2; }"},
		{"return in loop", "int main() { for (int i = 0; i < 5; i++) { if (i == 3) { return i; } cout << i; } }"},
		{"undefined variable", "int main() {\n  int a = 1;\n  cout << a << b;\n}"},
		{"undefined array", "int main() {\n  cout << z[0];\n}"},
		{"scalar indexed", "int main() {\n  int x = 1;\n  x[0] = 2;\n}"},
		{"true division and floored modulo", "int main() { cout << 7 / 2 << \" \" << 6 / 3 << \" \" << -7 % 3 << \" \" << 7 % -3 << \" \" << -7.5 % 2; }"},
		{"division by zero", "int main() {\n  int x = 0;\n  cout << 5 / x;\n}"},
		{"print array", "int main() {\n  int a[2];\n  cout << a;\n}"},
		{"mixed compare", "int main() {\n  cout << (\"a\" < 1);\n}"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var want strings.Builder
			_, ierr := interp.Run(tc.src, &interp.Options{Output: func(s string) { want.WriteString(s) }})

			_, prog, err := asm.Compile(tc.src)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			var got bytes.Buffer
			m := vm.New(prog)
			m.Output = &got
			verr := m.Run()

			if got.String() != want.String() {
				t.Errorf("output differs\n vm:     %q\n interp: %q", got.String(), want.String())
			}
			if (ierr == nil) != (verr == nil) {
				t.Fatalf("errors differ\n vm:     %v\n interp: %v", verr, ierr)
			}
			if ierr != nil {
				if verr.Error() != ierr.Error() {
					t.Errorf("messages differ\n vm:     %v\n interp: %v", verr, ierr)
				}
				il, _ := compiler.ErrorLine(ierr)
				vl, _ := compiler.ErrorLine(verr)
				if il != vl {
					t.Errorf("lines differ: vm %d, interp %d", vl, il)
				}
				for _, kind := range []error{interp.ErrName, interp.ErrType, interp.ErrDivisionByZero} {
					if errors.Is(ierr, kind) != errors.Is(verr, kind) {
						t.Errorf("kind %v differs", kind)
					}
				}
			}
		})
	}
}
