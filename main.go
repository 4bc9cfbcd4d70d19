// sbaconv converts CRM counseling and training extracts into XML documents
// conforming to the SBA reporting schemas. See cmd/ for the CLI surface.
package main

import "github.com/wbciowa/sba-converter/cmd"

func main() {
	cmd.Execute()
}
