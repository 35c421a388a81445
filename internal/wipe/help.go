package wipe

import (
	"sort"
)

func executeHelp(s *Session, sc *scanner) error {

	if sc.atEOL() {
		names := make([]string, 0, len(commandMap))
		for name := range commandMap {
			names = append(names, name)
		}

		sort.Strings(names)

		for _, name := range names {
			s.myPrintln(name)
		}

		s.myPrintln("<line#> [statement]")

		return nil
	}

	word, pos := sc.scanWord()

	cmd, ok := commandMap[word]
	if !ok {
		return errorAt(SyntaxError, EBADCOMMAND, sc.src, pos)
	}

	if err := noArguments(sc); err != nil {
		return err
	}

	s.myPrintln(cmd.help)

	return nil
}
