package repl

import (
	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/require"
)

// ModuleName is the native module that exposes the server to scripts.
const ModuleName = "host:repl"

// ModuleLoader returns the loader backing require("host:repl"). It exports
// listen([addr]) returning the bound address, and addr().
func (s *Server) ModuleLoader() require.ModuleLoader {
	return func(vm *goja.Runtime, module *goja.Object) {
		exports := module.Get("exports").(*goja.Object)

		_ = exports.Set("listen", func(call goja.FunctionCall) goja.Value {
			var addr string
			if arg := call.Argument(0); !goja.IsUndefined(arg) && !goja.IsNull(arg) {
				addr = arg.String()
			}
			bound, err := s.Listen(addr)
			if err != nil {
				panic(vm.NewGoError(err))
			}
			return vm.ToValue(bound)
		})

		_ = exports.Set("addr", func(goja.FunctionCall) goja.Value {
			return vm.ToValue(s.Addr())
		})
	}
}
