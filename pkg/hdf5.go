package lheutils

import (
	"errors"
	"fmt"

	hdf5 "github.com/jmbenlloch/go-hdf5"

	"github.com/next-exp/lheutils/lhef"
)

type RunInfoHDF5 struct {
	beam_a    int64
	beam_b    int64
	energy_a  float64
	energy_b  float64
	pdf_set_a int64
	pdf_set_b int64
	strategy  int64
}

type ProcInfoHDF5 struct {
	proc_id   int64
	x_section float64
	x_error   float64
	x_max     float64
}

type WeightDefHDF5 struct {
	wgt_index int64
	wgt_id    [STRLEN]byte
	grp_name  [STRLEN]byte
}

type EventHDF5 struct {
	evt_number  int64
	proc_id     int64
	weight      float64
	scale       float64
	alpha_qed   float64
	alpha_qcd   float64
	n_particles int64
}

type ParticleHDF5 struct {
	evt_number int64
	pdg_id     int64
	status     int64
	mother1    int64
	mother2    int64
	color1     int64
	color2     int64
	px         float64
	py         float64
	pz         float64
	energy     float64
	mass       float64
	lifetime   float64
	spin       float64
}

type WeightHDF5 struct {
	evt_number int64
	wgt_id     [STRLEN]byte
	value      float64
}

// STRLEN bounds weight ids and group names. MadGraph systematics ids run
// past 20 characters, so this is larger than the usual table string.
const STRLEN = 32

func convertToHdf5String(s string) [STRLEN]byte {
	var byteArray [STRLEN]byte
	copy(byteArray[:], s)
	return byteArray
}

func openFile(fname string) *hdf5.File {
	f, err := hdf5.CreateFile(fname, hdf5.F_ACC_TRUNC)
	if err != nil {
		panic(err)
	}
	return f
}

func createGroup(file *hdf5.File, groupName string) *hdf5.Group {
	g, err := file.CreateGroup(groupName)
	if err != nil {
		panic(err)
	}
	return g
}

func createTable(group *hdf5.Group, name string, datatype interface{}) *hdf5.Dataset {
	dims := []uint{0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims)}
	file_space, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		panic(err)
	}

	// create property list
	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		panic(err)
	}

	chunks := []uint{32768}
	plist.SetChunk(chunks)

	// Set compression level
	plist.SetDeflate(configuration.CompressionLevel)

	// create the memory data type
	dtype, err := hdf5.NewDatatypeFromValue(datatype)
	if err != nil {
		panic(err)
	}

	// create the dataset
	dset, err := group.CreateDatasetWith(name, dtype, file_space, plist)
	if err != nil {
		panic(err)
	}
	return dset
}

func writeEntryToTable[T any](dataset *hdf5.Dataset, data T, offset int) {
	array := []T{data}
	writeArrayToTable(dataset, &array, offset)
}

func writeArrayToTable[T any](dataset *hdf5.Dataset, data *[]T, offset int) {
	length := uint(len(*data))
	dims := []uint{length}
	dataspace, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		panic(err)
	}

	// extend
	rowsInFile := uint(offset)
	newsize := []uint{rowsInFile + length}
	dataset.Resize(newsize)
	filespace := dataset.Space()

	start := []uint{rowsInFile}
	count := []uint{length}
	filespace.SelectHyperslab(start, nil, count, nil)

	err = dataset.WriteSubset(data, dataspace, filespace)
	if err != nil {
		panic(err)
	}

	dataspace.Close()
	filespace.Close()
}

// HDF5Writer converts a stream of events into column tables. The run group
// holds the per-file records, the MC group grows by one events row and
// NUP particles rows per event.
type HDF5Writer struct {
	File           *hdf5.File
	Filename       string
	RunGroup       *hdf5.Group
	MCGroup        *hdf5.Group
	RunInfoTable   *hdf5.Dataset
	ProcInfoTable  *hdf5.Dataset
	WeightDefTable *hdf5.Dataset
	EventTable     *hdf5.Dataset
	ParticleTable  *hdf5.Dataset
	WeightTable    *hdf5.Dataset
	EvtCounter     int
	particleRows   int
	weightRows     int
}

func NewHDF5Writer(filename string, init *lhef.Init) *HDF5Writer {
	// Set string size for HDF5
	hdf5.SetStringLength(STRLEN)

	writer := &HDF5Writer{}
	writer.File = openFile(filename)
	writer.Filename = filename
	writer.RunGroup = createGroup(writer.File, "Run")
	writer.MCGroup = createGroup(writer.File, "MC")
	writer.RunInfoTable = createTable(writer.RunGroup, "runInfo", RunInfoHDF5{})
	writer.ProcInfoTable = createTable(writer.RunGroup, "processes", ProcInfoHDF5{})
	writer.WeightDefTable = createTable(writer.RunGroup, "weights", WeightDefHDF5{})
	writer.EventTable = createTable(writer.MCGroup, "events", EventHDF5{})
	writer.ParticleTable = createTable(writer.MCGroup, "particles", ParticleHDF5{})
	writer.WeightTable = createTable(writer.MCGroup, "weights", WeightHDF5{})
	writer.EvtCounter = 0

	writer.writeRunInfo(init)
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Created HDF5 file %s", filename)
		logInfo(message, "hdf5")
	}
	return writer
}

func (w *HDF5Writer) writeRunInfo(init *lhef.Init) {
	info := init.InitInfo
	writeEntryToTable(w.RunInfoTable, RunInfoHDF5{
		beam_a:    info.BeamA,
		beam_b:    info.BeamB,
		energy_a:  info.EnergyA,
		energy_b:  info.EnergyB,
		pdf_set_a: info.PDFSetA,
		pdf_set_b: info.PDFSetB,
		strategy:  info.WeightingStrategy,
	}, 0)

	// The array MUST be allocated at creation, if not, HDF5 will panic
	// doing appends will not work
	processes := make([]ProcInfoHDF5, len(init.ProcInfo))
	for i, p := range init.ProcInfo {
		processes[i] = ProcInfoHDF5{
			proc_id:   p.ProcID,
			x_section: p.XSection,
			x_error:   p.XError,
			x_max:     p.XMax,
		}
	}
	if len(processes) > 0 {
		writeArrayToTable(w.ProcInfoTable, &processes, 0)
	}

	defs := make([]WeightDefHDF5, 0, init.NumWeights())
	for _, wg := range init.WeightGroups {
		for _, wdef := range wg.Weights {
			defs = append(defs, WeightDefHDF5{
				wgt_index: int64(wdef.Index),
				wgt_id:    convertToHdf5String(wdef.ID),
				grp_name:  convertToHdf5String(wg.Name),
			})
		}
	}
	if len(defs) > 0 {
		writeArrayToTable(w.WeightDefTable, &defs, 0)
	}
}

func (w *HDF5Writer) WriteEvent(event *lhef.Event) {
	info := event.EventInfo
	writeEntryToTable(w.EventTable, EventHDF5{
		evt_number:  int64(w.EvtCounter),
		proc_id:     info.ProcID,
		weight:      info.Weight,
		scale:       info.Scale,
		alpha_qed:   info.AlphaQED,
		alpha_qcd:   info.AlphaQCD,
		n_particles: int64(len(event.Particles)),
	}, w.EvtCounter)

	if len(event.Particles) > 0 {
		particles := make([]ParticleHDF5, len(event.Particles))
		for i, p := range event.Particles {
			particles[i] = ParticleHDF5{
				evt_number: int64(w.EvtCounter),
				pdg_id:     p.ID,
				status:     p.Status,
				mother1:    p.Mother1,
				mother2:    p.Mother2,
				color1:     p.Color1,
				color2:     p.Color2,
				px:         p.Px,
				py:         p.Py,
				pz:         p.Pz,
				energy:     p.E,
				mass:       p.M,
				lifetime:   p.Lifetime,
				spin:       p.Spin,
			}
		}
		writeArrayToTable(w.ParticleTable, &particles, w.particleRows)
		w.particleRows += len(particles)
	}

	if len(event.Weights) > 0 {
		weights := make([]WeightHDF5, len(event.Weights))
		for i, wgt := range event.Weights {
			weights[i] = WeightHDF5{
				evt_number: int64(w.EvtCounter),
				wgt_id:     convertToHdf5String(wgt.ID),
				value:      wgt.Value,
			}
		}
		writeArrayToTable(w.WeightTable, &weights, w.weightRows)
		w.weightRows += len(weights)
	}

	w.EvtCounter++
}

func (w *HDF5Writer) Close() error {
	var errs []error

	if err := w.RunInfoTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing run info table: %w", err))
	}
	if err := w.ProcInfoTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing process table: %w", err))
	}
	if err := w.WeightDefTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing weight definition table: %w", err))
	}
	if err := w.EventTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing event table: %w", err))
	}
	if err := w.ParticleTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing particle table: %w", err))
	}
	if err := w.WeightTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing weight table: %w", err))
	}
	if err := w.RunGroup.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing run group: %w", err))
	}
	if err := w.MCGroup.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing MC group: %w", err))
	}
	if err := w.File.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing file: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
