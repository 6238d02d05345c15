/*
Package repl serves remote evaluation and tooling over HTTP.

It is started from the remote evaluation namespace through the native
module "host:repl":

	const repl = require('host:repl');
	exports.start = function () { return repl.listen(); };

Routes:

	POST /eval             evaluate code in the runtime
	GET  /instances        bridged instances
	GET  /instances/:ns    one instance by namespace
	POST /reload           rebuild the UI of every live instance
	POST /reload/:ns       rebuild the UI of one instance
	GET  /ws               interactive evaluation session
	GET  /metrics          prometheus metrics
*/
package repl
