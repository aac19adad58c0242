package tree_test

import (
	"fmt"

	"github.com/matzehuels/cladeview/pkg/tree"
)

func ExampleParseNewick() {
	t, err := tree.ParseNewick("((a:1,b:2)c:1)d:0;")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	for _, n := range t.Postorder() {
		fmt.Println(n.Name, n.BranchLength())
	}
	// Output:
	// a 1
	// b 2
	// c 1
	// d 0
}

func ExampleNameUnlabeled() {
	t, _ := tree.ParseNewick("((a,b),c);")
	tree.NameUnlabeled(t)
	fmt.Println(t.Newick())
	// Output:
	// ((a:1,b:1)y2:1,c:1)y4:1;
}
