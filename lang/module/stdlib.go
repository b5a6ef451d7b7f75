package module

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mna/hpl/lang/hplerror"
	"github.com/mna/hpl/lang/types"
)

// stdlibModules is the registered standard library spec.md §4.6 step 1
// names: io, math, json, os, time. Grounded on
// _examples/original_source/hpl_runtime/module_loader.py's init_stdlib,
// which registers the same five names against hand-written Python wrapper
// modules; here each is a HostPackage built directly from a Go standard
// library package, since HPL's stdlib is a thin host-language bridge in
// both implementations, not a scripted one.
var stdlibModules = map[string]HostPackage{
	"math": mathModule(),
	"io":   ioModule(),
	"os":   osModule(),
	"time": timeModule(),
	"json": jsonModule(),
}

func arityErr(name string, want, got int) error {
	return fmt.Errorf("%s() takes %d argument(s), got %d", name, want, got)
}

func wantFloat(name string, args []types.Value, i int) (float64, error) {
	if i >= len(args) {
		return 0, arityErr(name, i+1, len(args))
	}
	switch v := args[i].(type) {
	case types.Int:
		return float64(v), nil
	case types.Float:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%s() requires a numeric argument, got %s", name, v.Type())
	}
}

func mathModule() HostPackage {
	return HostPackage{
		Constants: map[string]types.Value{
			"PI": types.Float(math.Pi),
			"E":  types.Float(math.E),
		},
		Functions: map[string]types.BuiltinFunc{
			"sqrt": func(args []types.Value) (types.Value, error) {
				x, err := wantFloat("sqrt", args, 0)
				if err != nil {
					return nil, err
				}
				if x < 0 {
					return nil, fmt.Errorf("sqrt() of a negative number")
				}
				return types.Float(math.Sqrt(x)), nil
			},
			"pow": func(args []types.Value) (types.Value, error) {
				x, err := wantFloat("pow", args, 0)
				if err != nil {
					return nil, err
				}
				y, err := wantFloat("pow", args, 1)
				if err != nil {
					return nil, err
				}
				return types.Float(math.Pow(x, y)), nil
			},
			"floor": func(args []types.Value) (types.Value, error) {
				x, err := wantFloat("floor", args, 0)
				if err != nil {
					return nil, err
				}
				return types.Int(int64(math.Floor(x))), nil
			},
			"ceil": func(args []types.Value) (types.Value, error) {
				x, err := wantFloat("ceil", args, 0)
				if err != nil {
					return nil, err
				}
				return types.Int(int64(math.Ceil(x))), nil
			},
			"round": func(args []types.Value) (types.Value, error) {
				x, err := wantFloat("round", args, 0)
				if err != nil {
					return nil, err
				}
				return types.Int(int64(math.Round(x))), nil
			},
		},
	}
}

// MaxFileSizeBytes bounds io.readFile/io.writeFile, surfacing
// RuntimeError(errorKey="FILE_SIZE_EXCEEDED") past it (spec.md §4.8's
// fileSizeMB resource limit, applied here at the stdlib boundary since
// io's HostPackage functions run outside the evaluator's Thread and so
// cannot consult a per-run limit directly). lang/sandbox overrides this
// from its own resource-limit bundle before running a program that
// imports io.
var MaxFileSizeBytes int64 = 10 * 1024 * 1024

func ioModule() HostPackage {
	return HostPackage{
		Functions: map[string]types.BuiltinFunc{
			"readFile": func(args []types.Value) (types.Value, error) {
				if len(args) != 1 {
					return nil, arityErr("readFile", 1, len(args))
				}
				path, ok := args[0].(types.String)
				if !ok {
					return nil, fmt.Errorf("readFile() requires a string path, got %s", args[0].Type())
				}
				fi, err := os.Stat(string(path))
				if err != nil {
					return nil, err
				}
				if fi.Size() > MaxFileSizeBytes {
					return nil, fileSizeErr(fi.Size())
				}
				data, err := os.ReadFile(string(path))
				if err != nil {
					return nil, err
				}
				return types.String(data), nil
			},
			"writeFile": func(args []types.Value) (types.Value, error) {
				if len(args) != 2 {
					return nil, arityErr("writeFile", 2, len(args))
				}
				path, ok := args[0].(types.String)
				if !ok {
					return nil, fmt.Errorf("writeFile() requires a string path, got %s", args[0].Type())
				}
				content, ok := args[1].(types.String)
				if !ok {
					return nil, fmt.Errorf("writeFile() requires string content, got %s", args[1].Type())
				}
				if int64(len(content)) > MaxFileSizeBytes {
					return nil, fileSizeErr(int64(len(content)))
				}
				if err := os.WriteFile(string(path), []byte(content), 0o644); err != nil {
					return nil, err
				}
				return types.NullValue, nil
			},
		},
	}
}

func fileSizeErr(size int64) error {
	return hplerror.New(hplerror.RuntimeError, "FILE_SIZE_EXCEEDED",
		"file size %d bytes exceeds the %d byte limit", size, MaxFileSizeBytes)
}

// AllowedEnvVars is the explicit allow-list os.getenv may read (spec.md §6:
// "environment: the sandbox reads only an explicit allow-list of
// environment variables from the host"). Empty by default: no host
// environment variable is visible to a program until the embedder opts
// one in.
var AllowedEnvVars = map[string]bool{}

func osModule() HostPackage {
	return HostPackage{
		Functions: map[string]types.BuiltinFunc{
			"getenv": func(args []types.Value) (types.Value, error) {
				if len(args) != 1 {
					return nil, arityErr("getenv", 1, len(args))
				}
				name, ok := args[0].(types.String)
				if !ok {
					return nil, fmt.Errorf("getenv() requires a string name, got %s", args[0].Type())
				}
				if !AllowedEnvVars[string(name)] {
					return types.NullValue, nil
				}
				v, ok := os.LookupEnv(string(name))
				if !ok {
					return types.NullValue, nil
				}
				return types.String(v), nil
			},
		},
	}
}

func timeModule() HostPackage {
	return HostPackage{
		Functions: map[string]types.BuiltinFunc{
			"now": func(args []types.Value) (types.Value, error) {
				return types.Float(float64(time.Now().UnixNano()) / 1e9), nil
			},
			"sleep": func(args []types.Value) (types.Value, error) {
				secs, err := wantFloat("sleep", args, 0)
				if err != nil {
					return nil, err
				}
				if secs < 0 {
					return nil, fmt.Errorf("sleep() requires a non-negative duration")
				}
				// Wall-clock sleep, not cooperatively cancellable: the sandbox
				// runner's own timeout kills the whole worker process regardless
				// (lang/sandbox), so a Thread-level cancellation check here would
				// be redundant outside the sandbox and unreachable inside it.
				time.Sleep(time.Duration(secs * float64(time.Second)))
				return types.NullValue, nil
			},
		},
	}
}

func jsonModule() HostPackage {
	return HostPackage{
		Functions: map[string]types.BuiltinFunc{
			"encode": func(args []types.Value) (types.Value, error) {
				if len(args) != 1 {
					return nil, arityErr("encode", 1, len(args))
				}
				v, err := toJSON(args[0])
				if err != nil {
					return nil, err
				}
				data, err := json.Marshal(v)
				if err != nil {
					return nil, err
				}
				return types.String(data), nil
			},
			"decode": func(args []types.Value) (types.Value, error) {
				if len(args) != 1 {
					return nil, arityErr("decode", 1, len(args))
				}
				s, ok := args[0].(types.String)
				if !ok {
					return nil, fmt.Errorf("decode() requires a string argument, got %s", args[0].Type())
				}
				var v any
				if err := json.Unmarshal([]byte(s), &v); err != nil {
					return nil, hplerror.New(hplerror.SyntaxError, "JSON_DECODE_ERROR", "%s", err)
				}
				return fromJSON(v)
			},
		},
	}
}

// toJSON converts a HPL Value into a json.Marshal-able Go value.
func toJSON(v types.Value) (any, error) {
	switch x := v.(type) {
	case types.Null:
		return nil, nil
	case types.Bool:
		return bool(x), nil
	case types.Int:
		return int64(x), nil
	case types.Float:
		return float64(x), nil
	case types.String:
		return string(x), nil
	case *types.Array:
		out := make([]any, len(x.Elems))
		for i, e := range x.Elems {
			jv, err := toJSON(e)
			if err != nil {
				return nil, err
			}
			out[i] = jv
		}
		return out, nil
	default:
		return nil, fmt.Errorf("json.encode() cannot encode a %s", v.Type())
	}
}

// fromJSON converts a decoded Go value into a HPL Value. HPL's value set
// has no map/object type (spec.md §3's closed tagged set), so a JSON
// object anywhere in the decoded document is a TypeError rather than a
// lossy or best-effort conversion.
func fromJSON(v any) (types.Value, error) {
	switch x := v.(type) {
	case nil:
		return types.NullValue, nil
	case bool:
		return types.Bool(x), nil
	case float64:
		if x == math.Trunc(x) {
			return types.Int(int64(x)), nil
		}
		return types.Float(x), nil
	case string:
		return types.String(x), nil
	case []any:
		elems := make([]types.Value, len(x))
		for i, e := range x {
			ev, err := fromJSON(e)
			if err != nil {
				return nil, err
			}
			elems[i] = ev
		}
		return types.NewArray(elems), nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return nil, hplerror.New(hplerror.TypeError, "JSON_OBJECT_UNSUPPORTED",
			"json.decode() does not support JSON objects (keys: %s); HPL has no map value type", strings.Join(keys, ", "))
	default:
		return nil, fmt.Errorf("json.decode() produced an unsupported value of type %T", x)
	}
}
