package pwatcher

import (
	"path/filepath"
	"strconv"
)

// RecommendedFlags are Aikar's G1 tuning flags for Minecraft servers. They are
// passed verbatim when Config.UseRecommendedFlags is set.
var RecommendedFlags = []string{
	"-XX:+UseG1GC",
	"-XX:+ParallelRefProcEnabled",
	"-XX:MaxGCPauseMillis=200",
	"-XX:+UnlockExperimentalVMOptions",
	"-XX:+DisableExplicitGC",
	"-XX:+AlwaysPreTouch",
	"-XX:G1NewSizePercent=30",
	"-XX:G1MaxNewSizePercent=40",
	"-XX:G1HeapRegionSize=8M",
	"-XX:G1ReservePercent=20",
	"-XX:G1HeapWastePercent=5",
	"-XX:G1MixedGCCountTarget=4",
	"-XX:InitiatingHeapOccupancyPercent=15",
	"-XX:G1MixedGCLiveThresholdPercent=90",
	"-XX:G1RSetUpdatingPauseTimePercent=5",
	"-XX:SurvivorRatio=32",
	"-XX:+PerfDisableSharedMem",
	"-XX:MaxTenuringThreshold=1",
}

// RuntimeMode is the last argument given to the server jar.
const RuntimeMode = "nogui"

// Paths locates the server and its files.
type Paths struct {
	Java      string // java executable, looked up in $PATH if not absolute
	ServerDir string
	ServerJar string // relative to ServerDir unless absolute
	Plugins   string // relative to ServerDir unless absolute
}

// DefaultPaths returns the usual layout inside dir.
func DefaultPaths(dir string) Paths {
	return Paths{
		Java:      "java",
		ServerDir: dir,
		ServerJar: "server.jar",
		Plugins:   "plugins",
	}
}

// JarPath returns the absolute-or-relative path to the server jar.
func (p Paths) JarPath() string { return p.resolve(p.ServerJar) }

// PluginsDir returns the path to the plugins directory.
func (p Paths) PluginsDir() string { return p.resolve(p.Plugins) }

func (p Paths) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.ServerDir, path)
}

// LaunchSpec is the fully resolved server command. It is built fresh for every
// launch and never modified afterwards.
type LaunchSpec struct {
	Dir  string
	Args []string
}

// BuildLaunchSpec builds the java command line for a heap of allocGB
// gibibytes. Min and max heap are pinned to the same value.
func BuildLaunchSpec(allocGB int, cfg Config, paths Paths) LaunchSpec {
	heap := strconv.Itoa(allocGB) + "G"

	args := make([]string, 0, 6+len(RecommendedFlags)+len(cfg.ExtraArgs))
	args = append(args, paths.Java, "-Xms"+heap, "-Xmx"+heap)

	if cfg.UseRecommendedFlags {
		args = append(args, RecommendedFlags...)
	}

	args = append(args, cfg.ExtraArgs...)
	args = append(args, "-jar", paths.JarPath(), RuntimeMode)

	return LaunchSpec{
		Dir:  paths.ServerDir,
		Args: args,
	}
}
