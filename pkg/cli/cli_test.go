package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"minicpp/pkg/compiler"
	"minicpp/pkg/interp"
)

const bubbleSort = `int main() {
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
}
`

func writeSource(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.cpp")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(args ...string) (stdout, stderr string, err error) {
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRun(t *testing.T) {
	path := writeSource(t, bubbleSort)
	out, _, err := execute("run", path)
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	want := "11 12 22 25 64 90 \nProgram finished with exit code: 0\n"
	if out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
}

func TestRunErrors(t *testing.T) {
	path := writeSource(t, "int main() {\n  cout << 1;\n  cout << y;\n}")
	out, _, err := execute("run", path)
	if !errors.Is(err, interp.ErrName) {
		t.Fatalf("err = %v", err)
	}
	if line, _ := compiler.ErrorLine(err); line != 3 {
		t.Errorf("line = %d", line)
	}
	if out != "1\n" {
		t.Errorf("partial output = %q", out)
	}

	path = writeSource(t, "int main() { x = ; }")
	if _, _, err := execute("run", path); !errors.Is(err, compiler.ErrSyntax) {
		t.Errorf("err = %v", err)
	}

	if _, _, err := execute("run", filepath.Dir(path)); err == nil {
		t.Error("expected directory error")
	}
}

func TestRunFlags(t *testing.T) {
	path := writeSource(t, "int main() { int i = 0; while (i < 10) { i = i; } }")
	_, stderr, err := execute("run", "--max-steps", "100", "--trace", path)
	if !errors.Is(err, interp.ErrStepLimit) {
		t.Fatalf("err = %v", err)
	}
	for _, stage := range []string{"parse: ", "interpret: "} {
		if !strings.Contains(stderr, stage) {
			t.Errorf("stderr missing %q:\n%s", stage, stderr)
		}
	}

	path = writeSource(t, "int main() { cout << q; }")
	_, stderr, _ = execute("run", "--check", path)
	if !strings.Contains(stderr, "warning: línea 1: error [undeclared]") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestTokensAndAST(t *testing.T) {
	path := writeSource(t, "int main() { cout << 1 + 2; }")

	out, _, err := execute("tokens", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "Tokens (13)\n") || !strings.Contains(out, "SHL_OP") {
		t.Errorf("tokens output:\n%s", out)
	}

	out, _, err = execute("ast", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cout:") || !strings.Contains(out, "Operador: +") {
		t.Errorf("ast output:\n%s", out)
	}
}

func TestCheck(t *testing.T) {
	out, _, err := execute("check", writeSource(t, bubbleSort))
	if err != nil || out != "sin problemas\n" {
		t.Errorf("clean check = %q, %v", out, err)
	}

	out, _, err = execute("check", "--symbols", writeSource(t, "int main() { int a; cout << a / 0; }"))
	if err == nil || err.Error() != "check failed: 1 error(s)" {
		t.Errorf("err = %v", err)
	}
	if !strings.Contains(out, "Symbols:") || !strings.Contains(out, "[division_by_zero]") {
		t.Errorf("check output:\n%s", out)
	}
}

func TestEmit(t *testing.T) {
	path := writeSource(t, bubbleSort)

	out, _, err := execute("emit", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, ".CODE\n") || !strings.HasSuffix(out, "    END\n") {
		t.Errorf("listing:\n%s", out)
	}

	out, _, err = execute("emit", "--run", path)
	if err != nil {
		t.Fatal(err)
	}
	if out != "11 12 22 25 64 90 \nProgram finished with exit code: 0\n" {
		t.Errorf("vm output = %q", out)
	}

	_, stderr, err := execute("emit", "--obj", path)
	if err != nil {
		t.Fatal(err)
	}
	obj := strings.TrimSuffix(path, ".cpp") + ".obj"
	data, err := os.ReadFile(obj)
	if err != nil || !strings.HasPrefix(string(data), ".CODE") {
		t.Errorf("obj file: %v", err)
	}
	if !strings.Contains(stderr, "-> "+obj) {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestCalc(t *testing.T) {
	out, _, err := execute("calc", "3 + 4 * 2")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Tokens: 3 + 4 * 2\n", "RPN: 3 4 2 * +\n", "  Binary Expression -> 3 + (4 * 2)\n", "Resultado: 11\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("calc output missing %q:\n%s", want, out)
		}
	}

	out, _, _ = execute("calc", "x", "*", "2")
	if !strings.Contains(out, "Identificadores: x\n") || !strings.Contains(out, "Resultado: (sin valor)\n") {
		t.Errorf("calc output:\n%s", out)
	}

	out, _, err = execute("calc", "-3+5")
	if err != nil {
		t.Fatalf("leading minus: %v", err)
	}
	if !strings.Contains(out, "Tokens: u- 3 + 5\n") || !strings.Contains(out, "Resultado: 2\n") {
		t.Errorf("calc output:\n%s", out)
	}

	if _, _, err := execute("calc", "1 / 0"); err == nil {
		t.Error("expected division error")
	}
}
