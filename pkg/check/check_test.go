package check

import (
	"reflect"
	"strings"
	"testing"

	"minicpp/pkg/compiler"
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
}`

func TestCheck(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []Issue
	}{
		{
			name: "clean program",
			src:  bubbleSort,
			want: nil,
		},
		{
			name: "undeclared reported once per line",
			src:  "int main() { cout << x << x << endl; }",
			want: []Issue{{Level: IssueError, Code: CodeUndeclared, Message: "variable 'x' usada sin declarar", Line: 1}},
		},
		{
			name: "redeclared",
			src:  "int main() {\n  int a;\n  int a = 2;\n}",
			want: []Issue{{Level: IssueWarning, Code: CodeRedeclared, Message: "'a' ya fue declarado en la línea 2", Line: 3}},
		},
		{
			name: "scalar indexed",
			src:  "int main() {\n  int x;\n  x[0] = 1;\n  cout << x[1];\n}",
			want: []Issue{
				{Level: IssueError, Code: CodeNotArray, Message: "'x' no es un arreglo", Line: 3},
				{Level: IssueError, Code: CodeNotArray, Message: "'x' no es un arreglo", Line: 4},
			},
		},
		{
			name: "division by zero",
			src:  "int main() {\n  int z = 0;\n  cout << 5 / 0;\n  cout << 5 / z;\n  z = 2;\n  cout << 5 % z;\n}",
			want: []Issue{
				{Level: IssueError, Code: CodeDivisionByZero, Message: "división por cero", Line: 3},
				{Level: IssueWarning, Code: CodeDivisionByZero, Message: "división por cero (variable 'z' con valor 0)", Line: 4},
			},
		},
		{
			name: "for without declaration",
			src:  "int main() { int i; for (i = 0; i < 3; i++) { } }",
			want: []Issue{{Level: IssueWarning, Code: CodeForNoDeclaration, Message: "el ciclo for debería declarar su variable de control (int x = 0)", Line: 1}},
		},
		{
			name: "condition without comparison",
			src:  "int main() { int k = 1; while (k) { break; } }",
			want: []Issue{{Level: IssueWarning, Code: CodeNoRelational, Message: "falta operador relacional en la condición del while", Line: 1}},
		},
		{
			name: "implicit declarations",
			src:  "int main() {\n  y = 3;\n  w[1] = 2;\n  cout << y << w[1];\n}",
			want: []Issue{
				{Level: IssueWarning, Code: CodeImplicit, Message: "variable 'y' asignada sin declarar", Line: 2},
				{Level: IssueWarning, Code: CodeImplicit, Message: "arreglo 'w' asignado sin declarar", Line: 3},
			},
		},
		{
			name: "switch subject and sizeof",
			src:  "int main() { switch (k) { case : cout << 1; } cout << sizeof(q); }",
			want: []Issue{
				{Level: IssueError, Code: CodeUndeclared, Message: "variable 'k' usada sin declarar", Line: 1},
				{Level: IssueError, Code: CodeUndeclared, Message: "variable 'q' usada sin declarar", Line: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := compiler.Parse(tt.src)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			got := Check(root)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Check() = %+v\nwant %+v", got, tt.want)
			}
		})
	}
}

func TestCheckNil(t *testing.T) {
	if issues := Check(nil); len(issues) != 0 {
		t.Errorf("Check(nil) = %v", issues)
	}
}

func TestHasErrors(t *testing.T) {
	if HasErrors([]Issue{{Level: IssueWarning}}) {
		t.Error("warnings only")
	}
	if !HasErrors([]Issue{{Level: IssueWarning}, {Level: IssueError}}) {
		t.Error("expected error")
	}
}

func TestIssueString(t *testing.T) {
	i := Issue{Level: IssueError, Code: CodeUndeclared, Message: "variable 'x' usada sin declarar", Line: 7}
	want := "línea 7: error [undeclared] variable 'x' usada sin declarar"
	if i.String() != want {
		t.Errorf("String() = %q", i.String())
	}
	if line, ok := compiler.ErrorLine(errString(i.String())); !ok || line != 7 {
		t.Errorf("ErrorLine = %d, %v", line, ok)
	}
}

type errString string

func (e errString) Error() string { return string(e) }

func TestSymbolTable(t *testing.T) {
	root, err := compiler.Parse("int main() {\n  int a[3];\n  float f = 2.5;\n  f = 0;\n}")
	if err != nil {
		t.Fatal(err)
	}
	_, syms := CheckWithSymbols(root)

	a, ok := syms.Lookup("a")
	if !ok || a.Kind != KindArray || a.Size != 3 || a.Line != 2 {
		t.Errorf("a = %+v", a)
	}
	f, _ := syms.Lookup("f")
	if f.Type != "float" || f.Literal != "0" {
		t.Errorf("f = %+v", f)
	}
	if _, existed := syms.Allocate(Symbol{Name: "a"}); !existed {
		t.Error("Allocate should report the existing symbol")
	}

	dump := syms.String()
	for _, want := range []string{"Symbols:\n", "a                     array (Type: int, Size: 3, Line: 2)", "= 0\n", "endl"} {
		if !strings.Contains(dump, want) {
			t.Errorf("String() missing %q:\n%s", want, dump)
		}
	}
}
