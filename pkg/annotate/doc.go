// Package annotate labels text records and image files in batches and scores
// predicted labels against references.
//
// Quick start:
//
//	a, err := annotate.New(annotate.WithModelDir("models/"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer a.Close()
//
//	res, _ := a.ClassifyImages(ctx, "photos/", "labels.json", 0)
//	fmt.Println(res.Records, res.Unreadable)
//
// Without a model, AnnotateFile and AnnotateImages still apply fixed labels.
// Create one Annotator per process; the model is loaded once and shared by
// every run.
package annotate
