// Package autoupdate checks upstream release feeds for the tracked
// dependencies and bumps their versions in a shell definitions file.
//
// The package implements:
//   - The built-in dependency table and a TOML override file
//   - Atom feed fetching with retry and exponential backoff
//   - HTML release page scraping with CSS selectors or XPath
//   - Tag normalization into dotted versions
//   - A line-oriented patcher for NAME_VERSION=x.y.z assignments
//   - Run reports, commit message export and YAML report files
//
// Usage:
//
//	checker, err := autoupdate.NewChecker("config.sh")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report, err := checker.CheckAll(ctx)
//	fmt.Println(report.Summary())
package autoupdate
