// Package pwatcher is the core of the pwatcher application: it keeps a single
// game server process running and relaunches it whenever a plugin jar shows up
// in the plugins directory.
//
// # Mechanism of Operation
//
// On startup, the Coordinator loads the configuration, computes a heap size
// from the host's memory and launches the server once. It then watches the
// plugins directory (non-recursively) with fsnotify. Every create, write or
// rename of a file ending in ".jar" that isn't matched by an ignore pattern
// asks the Supervisor to start the server.
//
// The Supervisor holds at most one child process. Starting is idempotent: if
// the held process is still alive, the request is dropped. A single plugin
// copy usually fires several events, so this is what keeps a burst of events
// from launching several servers. Liveness is polled lazily with a
// non-blocking wait, so the Supervisor has no background routine of its own.
//
// The child process is never stopped by pwatcher. When the watcher exits, the
// server keeps running.
//
// A server directory may look like this:
//
//	server/
//	    server.jar
//	    pwatchercfg.json
//	    pwatcher.journal
//	    plugins/
//	        CoolPlugin.jar
//	        helper.jar
package pwatcher
