package classifier

import "testing"

func TestWhitelistsExceptionAllocation(t *testing.T) {
	frames := []Frame{
		{Depth: 0, Symbol: "my_malloc"},
		{Depth: 1, Symbol: "searchKnowledgeBase"},
		{Depth: 2, Symbol: "__cxa_allocate_exception"},
		{Depth: 3, Symbol: "main"},
	}
	result := Classify(frames)
	if !result.Whitelisted {
		t.Fatal("expected __cxa_allocate_exception at depth 2 to be whitelisted")
	}
}

func TestDoesNotWhitelistUnrelatedFrames(t *testing.T) {
	frames := []Frame{
		{Depth: 0, Symbol: "my_malloc"},
		{Depth: 1, Symbol: "application_do_work"},
		{Depth: 2, Symbol: "main"},
	}
	result := Classify(frames)
	if result.Whitelisted {
		t.Fatal("ordinary application frames must not be whitelisted")
	}
	if result.Ignored {
		t.Fatal("ordinary application frames must not be ignored")
	}
}

func TestSymbolizationFailureFailsSafe(t *testing.T) {
	frames := []Frame{
		{Depth: 0, Symbol: ""},
	}
	result := Classify(frames)
	if !result.Whitelisted || !result.Ignored {
		t.Fatal("a frame that cannot be symbolized must whitelist and ignore")
	}
}

func TestDemanglePassesThroughPlainNames(t *testing.T) {
	got, ok := Demangle("my_malloc")
	if !ok || got != "my_malloc" {
		t.Fatalf("Demangle(%q) = %q, %v", "my_malloc", got, ok)
	}
}

func TestDemangleItaniumName(t *testing.T) {
	// _ZN9__gnu_cxx18__exchange_and_addEPii demangles to a libstdc++ helper.
	got, ok := Demangle("_ZN9__gnu_cxx18__exchange_and_addEPii")
	if !ok {
		t.Fatal("expected demangling to succeed")
	}
	if got == "_ZN9__gnu_cxx18__exchange_and_addEPii" {
		t.Fatal("expected the mangled name to change after demangling")
	}
}
