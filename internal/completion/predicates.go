package completion

import "strings"

// CmdNamePred matches while completing the command name itself (argument
// 0).
func CmdNamePred(ctx Context) bool { return ctx.ArgNum == 0 }

// ArgPred matches while completing any argument after the command name.
func ArgPred(ctx Context) bool { return ctx.ArgNum != 0 }

// CmdNameEq returns a predicate matching when the command name equals
// name.
func CmdNameEq(name string) Predicate {
	return func(ctx Context) bool {
		cmd, ok := ctx.CmdName()
		return ok && cmd == name
	}
}

// ShortFlagPred matches a word starting with "-" that isn't a long flag.
func ShortFlagPred(ctx Context) bool {
	cur, _ := ctx.CurWord()
	return strings.HasPrefix(cur, "-") && !LongFlagPred(ctx)
}

// LongFlagPred matches a word starting with "--".
func LongFlagPred(ctx Context) bool {
	cur, _ := ctx.CurWord()
	return strings.HasPrefix(cur, "--")
}

// FlagPred matches either flag style.
func FlagPred(ctx Context) bool { return LongFlagPred(ctx) || ShortFlagPred(ctx) }

// PathPred matches when the directory portion of the current word
// resolves to an existing directory on fsys.
func PathPred(fsys FileSystem) Predicate {
	return func(ctx Context) bool {
		cur, _ := ctx.CurWord()
		dir := resolveDir(fsys, dropPathEnd(cur))
		return fsys.IsDir(dir)
	}
}

// dropPathEnd drops everything after the last '/', keeping the slash.
func dropPathEnd(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return ""
	}
	return path[:i+1]
}
