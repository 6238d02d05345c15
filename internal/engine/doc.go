/*
Package engine hosts the interpreted runtime that namespaces live in.

The bridge and the bootstrap only depend on the small interfaces declared
here: SymbolTable (require, resolve, invoke) and Capabilities (feature and
resource lookups). Goja implements them on top of the goja JavaScript VM.

# Namespaces

A namespace is a JS module. Its identifier maps to a path in the module
filesystem by turning dots into slashes and hyphens into underscores:

	com.example.foo.neko-activity  ->  com/example/foo/neko_activity.js

Modules are CommonJS style and may require each other with relative paths or
require host-provided native modules such as "host:log".

# Threading

A goja VM is single threaded. Every entry into the VM takes the engine mutex,
so Go functions exposed to JS must not call back into the engine
synchronously; post the work instead.
*/
package engine
